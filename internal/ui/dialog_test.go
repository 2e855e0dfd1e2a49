package ui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dshills/quill/internal/fileio"
)

// serve answers the next request from d with fn.
func serve(t *testing.T, d *Dialog, fn func(*Request)) <-chan *Request {
	t.Helper()
	got := make(chan *Request, 1)
	go func() {
		select {
		case req := <-d.Requests():
			got <- req
			fn(req)
		case <-time.After(5 * time.Second):
			close(got)
		}
	}()
	return got
}

func TestDialog_PickOpen(t *testing.T) {
	d := NewDialog()
	got := serve(t, d, func(r *Request) { r.Answer("/docs/a.txt") })

	path, err := d.PickOpen(t.Context(), fileio.OpenTitle)
	if err != nil {
		t.Fatalf("PickOpen failed: %v", err)
	}
	if path != "/docs/a.txt" {
		t.Errorf("path = %q", path)
	}

	req := <-got
	if req.Kind != DialogOpen || req.Title != fileio.OpenTitle {
		t.Errorf("request = %+v", req)
	}
}

func TestDialog_PickSave(t *testing.T) {
	d := NewDialog()
	got := serve(t, d, func(r *Request) { r.Answer("/docs/b.txt") })

	path, err := d.PickSave(t.Context(), fileio.SaveTitle)
	if err != nil || path != "/docs/b.txt" {
		t.Fatalf("PickSave = %q, %v", path, err)
	}
	if req := <-got; req.Kind != DialogSave || req.Kind.String() != "save" {
		t.Errorf("Kind = %v", req.Kind)
	}
}

func TestDialog_Dismiss(t *testing.T) {
	tests := []struct {
		name   string
		answer func(*Request)
	}{
		{"dismiss", func(r *Request) { r.Dismiss() }},
		{"empty answer", func(r *Request) { r.Answer("") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDialog()
			serve(t, d, tt.answer)

			_, err := d.PickOpen(t.Context(), fileio.OpenTitle)
			if !errors.Is(err, fileio.ErrDialogClosed) {
				t.Errorf("error = %v, want ErrDialogClosed", err)
			}
		})
	}
}

func TestDialog_FirstAnswerWins(t *testing.T) {
	d := NewDialog()
	serve(t, d, func(r *Request) {
		r.Answer("/first.txt")
		r.Answer("/second.txt")
		r.Dismiss()
	})

	path, err := d.PickSave(t.Context(), fileio.SaveTitle)
	if err != nil || path != "/first.txt" {
		t.Errorf("PickSave = %q, %v", path, err)
	}
}

func TestDialog_NoHost(t *testing.T) {
	d := NewDialog()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := d.PickOpen(ctx, fileio.OpenTitle)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}

func TestDialog_CancelWhileShown(t *testing.T) {
	d := NewDialog()
	ctx, cancel := context.WithCancel(context.Background())

	shown := make(chan *Request, 1)
	go func() { shown <- <-d.Requests() }()

	errc := make(chan error, 1)
	go func() {
		_, err := d.PickOpen(ctx, fileio.OpenTitle)
		errc <- err
	}()

	req := <-shown
	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("PickOpen did not return after cancel")
	}

	select {
	case <-req.Done():
	default:
		t.Error("request should report that the caller left")
	}

	// A late answer must not block the host.
	req.Answer("/late.txt")
}

func TestDialog_ThroughCoordinator(t *testing.T) {
	d := NewDialog()
	serve(t, d, func(r *Request) { r.Dismiss() })

	c := fileio.NewCoordinator(nil, d)
	_, err := c.PickAndLoad(t.Context())

	var fe *fileio.Error
	if !errors.As(err, &fe) || fe.Kind != fileio.KindDialogClosed || fe.Op != "open" {
		t.Errorf("error = %v", err)
	}
}

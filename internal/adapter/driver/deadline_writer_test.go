package driver

import (
	"errors"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

type failingWriter struct {
	*httptest.ResponseRecorder
	err error
}

func (f failingWriter) Write(p []byte) (int, error) {
	return 0, f.err
}

func TestDeadlineWriter(t *testing.T) {
	t.Run("writes through and counts bytes", func(t *testing.T) {
		rec := httptest.NewRecorder()
		dw := newDeadlineWriter(rec, time.Second, newTestLogger())

		if _, err := dw.Write([]byte("#EXTM3U\n")); err != nil {
			t.Fatalf("Write() unexpected error = %v", err)
		}
		if _, err := dw.Write([]byte("http://a\n")); err != nil {
			t.Fatalf("Write() unexpected error = %v", err)
		}
		if rec.Body.String() != "#EXTM3U\nhttp://a\n" {
			t.Errorf("body = %q", rec.Body.String())
		}
		if dw.BytesWritten() != 17 {
			t.Errorf("BytesWritten() = %d, want 17", dw.BytesWritten())
		}
	})

	t.Run("deadline exceeded", func(t *testing.T) {
		dw := newDeadlineWriter(failingWriter{httptest.NewRecorder(), os.ErrDeadlineExceeded}, time.Second, newTestLogger())
		if _, err := dw.Write([]byte("x")); !errors.Is(err, ErrWriteTimeout) {
			t.Errorf("Write() error = %v, want ErrWriteTimeout", err)
		}
	})

	t.Run("other errors pass through", func(t *testing.T) {
		broken := errors.New("broken pipe")
		dw := newDeadlineWriter(failingWriter{httptest.NewRecorder(), broken}, 0, newTestLogger())
		_, err := dw.Write([]byte("x"))
		if !errors.Is(err, broken) || errors.Is(err, ErrWriteTimeout) {
			t.Errorf("Write() error = %v, want broken pipe", err)
		}
	})
}

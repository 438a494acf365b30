package driver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"
)

// ErrWriteTimeout indicates the client did not accept a write in time.
var ErrWriteTimeout = errors.New("write timeout")

// exportWriteTimeout bounds each write of a playlist download.
const exportWriteTimeout = 10 * time.Second

// deadlineWriter pushes the connection write deadline forward before every
// write so a stalled download fails instead of pinning the handler.
type deadlineWriter struct {
	dst          io.Writer
	rc           *http.ResponseController
	timeout      time.Duration
	logger       *slog.Logger
	bytesWritten int64
}

func newDeadlineWriter(w http.ResponseWriter, timeout time.Duration, logger *slog.Logger) *deadlineWriter {
	return &deadlineWriter{
		dst:     w,
		rc:      http.NewResponseController(w),
		timeout: timeout,
		logger:  logger,
	}
}

func (dw *deadlineWriter) Write(p []byte) (int, error) {
	if dw.timeout > 0 {
		if err := dw.rc.SetWriteDeadline(time.Now().Add(dw.timeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
			dw.logger.Debug("failed to set write deadline", "error", err)
		}
	}

	n, err := dw.dst.Write(p)
	dw.bytesWritten += int64(n)
	if err != nil && isTimeoutError(err) {
		dw.logger.Warn("slow client, write timed out",
			"timeout", dw.timeout,
			"bytes_written", dw.bytesWritten,
			"error", err)
		return n, fmt.Errorf("%w: %v", ErrWriteTimeout, err)
	}
	return n, err
}

// BytesWritten returns the number of bytes accepted by the client so far.
func (dw *deadlineWriter) BytesWritten() int64 {
	return dw.bytesWritten
}

func isTimeoutError(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

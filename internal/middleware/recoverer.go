package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"mip/internal/apperr"
	"mip/internal/logs"
	"mip/internal/models"
)

// Recoverer перехватывает панику в обработчике, пишет лог со стеком
// и отдаёт обычный конверт ошибки 500.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logs.Logger.WithFields(logrus.Fields{
					"reqid":  GetRequestID(r),
					"method": r.Method,
					"uri":    r.RequestURI,
					"stack":  string(debug.Stack()),
				}).Errorf("panic: %v", rec)
				models.WriteError(w, apperr.Internal("Internal Server Error", fmt.Errorf("panic: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

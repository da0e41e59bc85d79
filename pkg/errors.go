// Package pkg, projede paylaşılan utility'leri barındırır.
// Bu dosya domain-level error tanımlarını ve stabil hata kodlarını içerir.
//
// Error'lar iki katmanlıdır:
//   - Kind (sentinel): ErrNotFound, ErrUnauthorized ... → HTTP/WS status'a map'lenir
//   - Code: "WSK-42" gibi opak, stabil bir string → client'a aynen iletilir
//
// Karşılaştırma her zaman errors.Is ile yapılır:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
package pkg

import (
	"errors"
	"fmt"
)

// Domain-level error'lar (kind).
// Handler katmanı bu error'ları status code'lara map'ler.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrAlreadyExists   = errors.New("already exists")
	ErrBadRequest      = errors.New("bad request")
	ErrConflict        = errors.New("conflict")
	ErrTooManyRequests = errors.New("too many requests")
	ErrInternal        = errors.New("internal error")
)

// CodedError, bir kind'ı stabil bir hata koduyla birleştirir.
//
// Err asıl sebeptir (repository hatası, jwt parse hatası vb.) ve loglanır.
// Client'a sadece Code ve Status gider, iç detay sızdırılmaz.
type CodedError struct {
	Code string
	Kind error
	Err  error
}

// Coded, yeni bir CodedError oluşturur.
// err nil olabilir, bu durumda mesaj olarak kind kullanılır.
func Coded(code string, kind error, err error) *CodedError {
	return &CodedError{Code: code, Kind: kind, Err: err}
}

func (e *CodedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Code, e.Kind, e.Err)
}

// Unwrap, hem kind'ı hem sebebi döner.
// Go 1.20+ multi-unwrap: errors.Is(err, pkg.ErrNotFound) ve
// errors.Is(err, someCause) ikisi de çalışır.
func (e *CodedError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Status, kind'a karşılık gelen HTTP status code'u döner.
func (e *CodedError) Status() int {
	return mapErrorToStatus(e)
}

// CodeOf, error chain'indeki ilk CodedError'ın kodunu döner.
// Chain'de CodedError yoksa boş string döner.
func CodeOf(err error) string {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

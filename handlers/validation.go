package handlers

import (
	"strings"

	"github.com/goccy/go-json"

	"github.com/akinalp/wordless/ws"
)

// isInvalidRequest, bir action isteğinin işlenmeye değer olup olmadığını kontrol eder.
//
// true döner eğer:
//   - connectionID boşsa
//   - authorization yoksa
//   - required alanlardan biri body'de yoksa veya "falsy" ise
//     (null, "", false, 0). Boş dizi ve boş obje dolu sayılır;
//     içeriklerinin kontrolü ilgili service'e kalır (ör: emojis → WSK-41).
//
// Token burada doğrulanmaz; sadece varlığına bakılır.
func isInvalidRequest(req ws.Request, required ...string) bool {
	if strings.TrimSpace(req.ConnectionID) == "" || strings.TrimSpace(req.Authorization) == "" {
		return true
	}
	if len(required) == 0 {
		return false
	}

	var body map[string]any
	if len(req.Body) == 0 || json.Unmarshal(req.Body, &body) != nil {
		return true
	}

	for _, field := range required {
		if isFalsy(body[field]) {
			return true
		}
	}
	return false
}

// isFalsy, decode edilmiş bir JSON değerinin boş sayılıp sayılmadığını döner.
func isFalsy(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case float64:
		return val == 0
	default:
		return false
	}
}

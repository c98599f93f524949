package backendtest

import (
	"encoding/json"
	"fmt"
)

// DeltaLine builds one NDJSON record carrying a text delta.
func DeltaLine(text string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"message": map[string]string{"content": text},
		"done":    false,
	})
	return string(b)
}

// DoneLine builds the terminal record. A negative evalCount omits the
// token count.
func DoneLine(evalCount int) string {
	rec := map[string]interface{}{"done": true}
	if evalCount >= 0 {
		rec["eval_count"] = evalCount
	}
	b, _ := json.Marshal(rec)
	return string(b)
}

// ErrorLine builds an in-band error record.
func ErrorLine(message string) string {
	return fmt.Sprintf(`{"error":%q}`, message)
}

// ReplyBody builds a complete non-streaming chat reply body.
func ReplyBody(content string, evalCount int) string {
	rec := map[string]interface{}{
		"message": map[string]string{"role": "assistant", "content": content},
		"done":    true,
	}
	if evalCount >= 0 {
		rec["eval_count"] = evalCount
	}
	b, _ := json.Marshal(rec)
	return string(b)
}

package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"

	"go.uber.org/zap"

	"github.com/floodgrid/chain-reaction-backend/internal/hub"
)

// GenerateCode returns a 6-character room code from an unambiguous A–Z/0–9
// alphabet.
func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// CreateRoom allocates a fresh room under a server-generated code. Clients
// that want a code of their own use the websocket create command instead.
func CreateRoom(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for {
			code, err := GenerateCode()
			if err != nil {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}

			reply := make(chan hub.CreateResult, 1)
			h.Inbox() <- hub.CreateRoom{Code: code, Reply: reply}
			res := <-reply
			if errors.Is(res.Err, hub.ErrCodeExists) {
				log.Info("room code collision, regenerating", zap.String("room", code))
				continue
			}
			if res.Err != nil {
				http.Error(w, "failed to create room", http.StatusInternalServerError)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(struct {
				Code string `json:"code"`
			}{Code: code})
			return
		}
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/smartbill/smartbill/internal/model"
)

func TestToUserResponse_NeverExposesPasswordHash(t *testing.T) {
	t.Parallel()

	user := &model.User{
		ID:           "user-1",
		Email:        "alice@x.com",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(ToUserResponse(user))
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}

	body := string(data)
	if strings.Contains(body, "argon2id") || strings.Contains(body, "password") {
		t.Errorf("user response leaked password material: %s", body)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	for _, field := range []string{"id", "email", "is_active", "created_at"} {
		if _, ok := decoded[field]; !ok {
			t.Errorf("expected field %q in user response", field)
		}
	}
}

package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"eventsphere/internal/delivery/http/helpers"
)

// pathID reads the named path value and checks that it is a UUID. On failure it writes
// a 400 and returns false. The returned id is in canonical lower-case form.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid "+name)
		return "", false
	}
	return id.String(), true
}

func validUUID(s string) bool {
	return uuid.Validate(s) == nil
}

package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// JSON keys of the user entity, in table order
const (
	FieldUserID    = "userId"
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
)

// User represents a row of the users table
type User struct {
	UserID    int64  `json:"userId" db:"userId"`
	FirstName string `json:"firstName" db:"firstName"`
	LastName  string `json:"lastName" db:"lastName"`
	Email     string `json:"email" db:"email"`
}

// CreateUserRequest carries the raw values of a new user request body.
// A field is nil when its key was absent from the body. A key present with
// a JSON null holds the literal "null", so presence and value stay separate.
type CreateUserRequest struct {
	FirstName json.RawMessage `json:"firstName" validate:"required"`
	LastName  json.RawMessage `json:"lastName" validate:"required"`
	Email     json.RawMessage `json:"email" validate:"required"`
}

// ParseCreateUserRequest decodes a request body into a CreateUserRequest.
// Malformed JSON is an error. Well-formed JSON that is not an object yields
// an empty request, since it contains none of the required keys.
func ParseCreateUserRequest(body []byte) (*CreateUserRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			// valid JSON, but an array, string, number or bool
			return &CreateUserRequest{}, nil
		}
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}

	req := &CreateUserRequest{}
	req.FirstName = presentValue(fields, FieldFirstName)
	req.LastName = presentValue(fields, FieldLastName)
	req.Email = presentValue(fields, FieldEmail)
	return req, nil
}

func presentValue(fields map[string]json.RawMessage, key string) json.RawMessage {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	if raw == nil {
		return json.RawMessage("null")
	}
	return raw
}

// Values returns the bind values for the insert statement in column order
func (r *CreateUserRequest) Values() ([]interface{}, error) {
	values := make([]interface{}, 0, 3)
	for _, raw := range []json.RawMessage{r.FirstName, r.LastName, r.Email} {
		v, err := BindValue(raw)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// BindValue converts a raw JSON value into a SQL bind value: strings bind as
// their text, null binds as NULL, anything else binds as its JSON literal.
func BindValue(raw json.RawMessage) (interface{}, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("failed to decode string value: %w", err)
		}
		return s, nil
	}

	return string(trimmed), nil
}

// CreatedUser is the response body of a successful insert
type CreatedUser struct {
	UserID int64 `json:"userId"`
}

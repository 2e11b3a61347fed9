package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// User is one row of user_management. PasswordHash never leaves the service.
type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phone_number"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}

// CreateUserRequest is the POST /users payload. A nil field was not sent.
type CreateUserRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	Password    *string `json:"password"`
	Role        *string `json:"role"`
}

// UnmarshalJSON accepts strings and numbers. A number is kept as its JSON text.
func (r *CreateUserRequest) UnmarshalJSON(data []byte) error {
	return decodeTextFields(data, map[string]**string{
		"first_name":   &r.FirstName,
		"last_name":    &r.LastName,
		"email":        &r.Email,
		"phone_number": &r.PhoneNumber,
		"password":     &r.Password,
		"role":         &r.Role,
	})
}

// HasRequiredFields reports whether every field was supplied. Empty strings count as supplied.
func (r CreateUserRequest) HasRequiredFields() bool {
	return r.FirstName != nil && r.LastName != nil && r.Email != nil &&
		r.PhoneNumber != nil && r.Password != nil && r.Role != nil
}

// UpdateUserRequest is the PUT /users/:id payload. Absent and null fields are both nil.
type UpdateUserRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	Role        *string `json:"role"`
	Password    *string `json:"password"`
}

func (r *UpdateUserRequest) UnmarshalJSON(data []byte) error {
	return decodeTextFields(data, map[string]**string{
		"first_name":   &r.FirstName,
		"last_name":    &r.LastName,
		"email":        &r.Email,
		"phone_number": &r.PhoneNumber,
		"role":         &r.Role,
		"password":     &r.Password,
	})
}

// Fields returns the supplied fields keyed by their JSON name.
func (r UpdateUserRequest) Fields() map[string]string {
	fields := make(map[string]string)
	set := func(name string, v *string) {
		if v != nil {
			fields[name] = *v
		}
	}
	set("first_name", r.FirstName)
	set("last_name", r.LastName)
	set("email", r.Email)
	set("phone_number", r.PhoneNumber)
	set("role", r.Role)
	set("password", r.Password)
	return fields
}

// decodeTextFields reads a JSON object and stores each named member in its target.
// Unknown members are ignored and null leaves the target nil.
func decodeTextFields(data []byte, targets map[string]**string) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}

	for name, target := range targets {
		raw, ok := members[name]
		if !ok {
			continue
		}
		text, err := scalarText(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*target = text
	}
	return nil
}

func scalarText(raw json.RawMessage) (*string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	switch value := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &value, nil
	case json.Number:
		text := value.String()
		return &text, nil
	default:
		return nil, fmt.Errorf("unsupported value %s", raw)
	}
}

// UserEvent is published after a committed change to a user row.
type UserEvent struct {
	Type       string    `json:"type"` // created, updated, deleted
	UserID     int64     `json:"user_id"`
	Fields     []string  `json:"fields,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

/*
Mysql Schema:
CREATE DATABASE user_management_system;
USE user_management_system;

CREATE TABLE user_management (
	id INT AUTO_INCREMENT PRIMARY KEY,
	first_name VARCHAR(100) NOT NULL,
	last_name VARCHAR(100) NOT NULL,
	email VARCHAR(255) NOT NULL,
	phone_number VARCHAR(50) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(50) NOT NULL
);
*/

package handlers

import (
	"bytes"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/handsomefox/showboard/internal/logger"
	"github.com/handsomefox/showboard/internal/validation"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if payload == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", logger.Error(err))
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected trailing json")
		}
		return err
	}
	return nil
}

// decodeRequest decodes a DTO body. A value of the wrong JSON type comes back
// as a field error, anything else unreadable as a plain 400.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return badRequest("bad request")
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	err = decodeJSON(w, r, dst)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := jsonFieldName(dst, typeErr.Field)
		if field == "" {
			field = mismatchedField(dst, body)
		}
		return typeMismatch(field, typeErr)
	}
	return badRequest("bad request")
}

func typeMismatch(field string, typeErr *json.UnmarshalTypeError) validation.Result {
	tag, msg := "type", "has the wrong type"
	if typeErr.Type != nil {
		switch typeErr.Type.Kind() {
		case reflect.String:
			tag, msg = "string", "must be a string"
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			tag, msg = "number", "must be a number"
		case reflect.Bool:
			tag, msg = "boolean", "must be a boolean"
		}
	}
	return validation.Result{Fields: []validation.FieldError{{Field: field, Tag: tag, Message: msg}}}
}

func structType(dst any) reflect.Type {
	t := reflect.TypeOf(dst)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return t
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// jsonFieldName maps a decoder field reference (Go name or JSON path) onto
// the JSON name declared by dst.
func jsonFieldName(dst any, field string) string {
	if i := strings.LastIndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	t := structType(dst)
	if t == nil || field == "" {
		return field
	}
	for i := range t.NumField() {
		f := t.Field(i)
		if name := jsonName(f); f.Name == field || name == field {
			return name
		}
	}
	return field
}

// mismatchedField finds the first member of body that does not decode into
// its field of dst.
func mismatchedField(dst any, body []byte) string {
	t := structType(dst)
	var raw map[string]json.RawMessage
	if t == nil || json.Unmarshal(body, &raw) != nil {
		return ""
	}
	for i := range t.NumField() {
		f := t.Field(i)
		name := jsonName(f)
		val, ok := raw[name]
		if !ok {
			continue
		}
		if json.Unmarshal(val, reflect.New(f.Type).Interface()) != nil {
			return name
		}
	}
	return ""
}

func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, errors.New("missing id")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("bad id")
	}
	return id, nil
}

// pathParam returns the unescaped value of a path segment.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if val, err := url.PathUnescape(raw); err == nil {
		raw = val
	}
	return strings.TrimSpace(raw)
}

func queryParam(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func optionalID(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.New("bad id")
	}
	return &id, nil
}

func badRequest(msg string) error   { return &Error{Status: http.StatusBadRequest, Message: msg} }
func unauthorized(msg string) error { return &Error{Status: http.StatusUnauthorized, Message: msg} }
func forbidden(msg string) error    { return &Error{Status: http.StatusForbidden, Message: msg} }
func notFound(msg string) error     { return &Error{Status: http.StatusNotFound, Message: msg} }
func internal(err error) error      { return err }

func isNoRows(err error) bool { return errors.Is(err, sql.ErrNoRows) }

func toSQLNull[T any](v *T) sql.Null[T] {
	if v == nil {
		return sql.Null[T]{}
	}
	return sql.Null[T]{Valid: true, V: *v}
}

func fromSQLNull[T any](v sql.Null[T]) *T {
	if v.Valid {
		return &v.V
	}
	return nil
}

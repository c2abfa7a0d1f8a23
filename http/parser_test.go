package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazrean/partstream"
	httpform "github.com/mazrean/partstream/http"
)

const userForm = `
--boundary
Content-Disposition: form-data; name="name"

mazrean
--boundary
Content-Disposition: form-data; name="password"

password
--boundary
Content-Disposition: form-data; name="icon"; filename="icon.png"
Content-Type: image/png

icon contents
--boundary--`

func newUserRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/user", strings.NewReader(body))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=boundary")

	return req
}

type userStore struct {
	mu       sync.Mutex
	name     string
	password string
	icon     string
}

func (s *userStore) createUserHandler(res http.ResponseWriter, req *http.Request) {
	r := httpform.NewRequest(req)
	if !r.IsMultipart() {
		res.WriteHeader(http.StatusUnsupportedMediaType)
		return
	}

	var name, password string
	router := partstream.NewRouter()
	err := router.Register("icon", func(part *partstream.Part) error {
		return s.saveUser(req.Context(), name, password, part)
	})
	if err != nil {
		res.WriteHeader(http.StatusInternalServerError)
		return
	}

	err = r.Parse(router.Handle, partstream.WithFieldHandler(func(field partstream.Field) {
		switch field.Name {
		case "name":
			name = field.Value
		case "password":
			password = field.Value
		}
	}))
	if err != nil {
		res.WriteHeader(partstream.HTTPStatus(err))
		return
	}

	res.WriteHeader(http.StatusCreated)
}

func (s *userStore) saveUser(_ context.Context, name string, password string, iconReader io.Reader) error {
	sb := strings.Builder{}
	_, err := io.Copy(&sb, iconReader)
	if err != nil {
		return fmt.Errorf("failed to copy: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
	s.password = password
	s.icon = sb.String()

	return nil
}

func TestExample(t *testing.T) {
	t.Parallel()

	store := &userStore{}
	rec := httptest.NewRecorder()

	store.createUserHandler(rec, newUserRequest(userForm))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "mazrean", store.name)
	assert.Equal(t, "password", store.password)
	assert.Equal(t, "icon contents", store.icon)
}

func TestRequest_IsMultipart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		description string
		contentType string
		expect      bool
	}{
		{"form-data", "multipart/form-data; boundary=boundary", true},
		{"mixed", "multipart/mixed; boundary=boundary", true},
		{"no boundary", "multipart/form-data", false},
		{"json", "application/json", false},
		{"none", "", false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.description, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
			if test.contentType != "" {
				req.Header.Set("Content-Type", test.contentType)
			}

			assert.Equal(t, test.expect, httpform.NewRequest(req).IsMultipart())
		})
	}
}

func TestRequest_NotMultipart(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"mazrean"}`))
	req.Header.Set("Content-Type", "application/json")

	done := make(chan error, 1)
	ctrl, err := httpform.NewRequest(req).Multipart(func(part *partstream.Part) error {
		t.Error("handler must not be called")
		return nil
	}, func(err error) {
		done <- err
	})
	require.NoError(t, err)
	require.NotNil(t, ctrl)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, partstream.ErrNotMultipart)
	default:
		t.Fatal("completion callback was not called synchronously")
	}
}

func TestRequest_ContextCanceled(t *testing.T) {
	t.Parallel()

	pr, pw := io.Pipe()
	go func() {
		_, _ = io.WriteString(pw, "--boundary\r\n"+
			"Content-Disposition: form-data; name=\"icon\"; filename=\"icon.png\"\r\n\r\n"+
			"partial")
	}()

	ctx, cancel := context.WithCancelCause(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/", pr).WithContext(ctx)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=boundary")

	errCancel := errors.New("client went away")
	started := make(chan struct{})
	done := make(chan error, 1)
	_, err := httpform.NewRequest(req).Multipart(func(part *partstream.Part) error {
		close(started)
		_, _ = io.Copy(io.Discard, part)
		return nil
	}, func(err error) {
		done <- err
	})
	require.NoError(t, err)

	<-started
	cancel(errCancel)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, errCancel)
	case <-time.After(5 * time.Second):
		t.Fatal("completion callback was not called")
	}
}

func TestAttachToBody(t *testing.T) {
	t.Parallel()

	handler := httpform.AttachToBody(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, ok := httpform.BodyFromContext(req.Context())
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		name, _, _ := body.Value("name")
		icon, _ := body.File("icon")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"name": name,
			"icon": string(icon.Data),
		})
	}))

	t.Run("multipart", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newUserRequest(userForm))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"name":"mazrean","icon":"icon contents"}`, rec.Body.String())
	})

	t.Run("not multipart", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newUserRequest("--boundary\nContent-Disposition: form-data; name=\"name\"\n\nunterminated"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAttachToBody_ConsumerError(t *testing.T) {
	t.Parallel()

	handler := httpform.AttachToBody(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("next must not be called")
	}), partstream.WithFileConsumer(func(*partstream.Part, *partstream.File) error {
		return errors.New("disk full")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newUserRequest(userForm))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

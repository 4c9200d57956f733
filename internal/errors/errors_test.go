package errors

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderError(t *testing.T) {
	t.Run("message includes code and component", func(t *testing.T) {
		err := NewValidationError(CodeEmptyPageName, "page name is required").
			WithComponent("site")

		assert.Equal(t, "[ERR_EMPTY_PAGE_NAME] component:site page name is required", err.Error())
		assert.True(t, err.Recoverable)
	})

	t.Run("cause is unwrapped", func(t *testing.T) {
		cause := errors.New("disk full")
		err := NewStorageError("save project", cause)

		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("is matches type and code", func(t *testing.T) {
		err := fmt.Errorf("delete: %w", NewValidationError(CodeDeleteHomePage, "home page"))

		assert.ErrorIs(t, err, NewValidationError(CodeDeleteHomePage, ""))
		assert.NotErrorIs(t, err, NewValidationError(CodeDeleteLastPage, ""))
		assert.NotErrorIs(t, err, NewConflictError(CodeDeleteHomePage, ""))
	})

	t.Run("context accumulates", func(t *testing.T) {
		err := NewNotFoundError(CodePageNotFound, "no such page").
			WithContext("page", "p1").
			WithContext("project", "demo")

		assert.Equal(t, "p1", err.Context["page"])
		assert.Equal(t, "demo", err.Context["project"])
	})
}

func TestIsUserError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"validation", NewValidationError(CodeDuplicatePath, "dup"), true},
		{"not found", NewNotFoundError(CodeElementNotFound, "missing"), true},
		{"conflict wrapped", fmt.Errorf("x: %w", NewConflictError(CodeDuplicatePath, "dup")), true},
		{"storage", NewStorageError("boom", nil), false},
		{"plain", errors.New("plain"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUserError(tt.err))
		})
	}
}

func TestHasCodeAndGetType(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewNotFoundError(CodeProjectNotFound, "missing"))

	assert.True(t, HasCode(err, CodeProjectNotFound))
	assert.False(t, HasCode(err, CodePageNotFound))
	assert.Equal(t, ErrorTypeNotFound, GetType(err))
	assert.Equal(t, ErrorTypeInternal, GetType(errors.New("x")))
}

func TestHasCodeJoined(t *testing.T) {
	c := NewCollector()
	c.Add(errors.New("plain"))
	c.Add(fmt.Errorf("template hero: %w", NewValidationError(CodeCatalogIntegrity, "two roots")))

	assert.True(t, HasCode(c.Err(), CodeCatalogIntegrity))
	assert.True(t, HasCode(fmt.Errorf("validate: %w", c.Err()), CodeCatalogIntegrity))
	assert.False(t, HasCode(c.Err(), CodeInvalidProp))
	assert.False(t, HasCode(nil, CodeCatalogIntegrity))
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "noop"))

	plain := Wrap(errors.New("boom"), "load")
	assert.Equal(t, ErrorTypeInternal, GetType(plain))

	typed := Wrap(NewValidationError(CodeInvalidProp, "bad"), "update")
	assert.Equal(t, ErrorTypeValidation, GetType(typed))
	assert.Contains(t, typed.Error(), "update: ")
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	assert.False(t, c.HasErrors())
	assert.NoError(t, c.Err())

	c.Add(nil)
	assert.Equal(t, 0, c.Len())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Add(fmt.Errorf("problem %d", i))
		}(i)
	}
	wg.Wait()

	require.Equal(t, 20, c.Len())
	assert.Len(t, c.Errors(), 20)
	assert.Error(t, c.Err())

	c.Clear()
	assert.False(t, c.HasErrors())
}

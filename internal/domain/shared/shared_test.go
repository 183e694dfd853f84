package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	t.Run("replaces A,B with B,C", func(t *testing.T) {
		add, remove := Diff([]string{"A", "B"}, []string{"B", "C"})

		assert.Equal(t, []string{"C"}, add)
		assert.Equal(t, []string{"A"}, remove)
	})

	t.Run("empty desired set removes everything", func(t *testing.T) {
		add, remove := Diff([]string{"A", "B"}, nil)

		assert.Empty(t, add)
		assert.ElementsMatch(t, []string{"A", "B"}, remove)
	})

	t.Run("duplicates and order are ignored", func(t *testing.T) {
		add, remove := Diff([]int{1, 2}, []int{3, 2, 3, 1, 3})

		assert.Equal(t, []int{3}, add)
		assert.Empty(t, remove)
	})

	t.Run("identical sets produce no changes", func(t *testing.T) {
		add, remove := Diff([]int{1, 2}, []int{2, 1})

		assert.Empty(t, add)
		assert.Empty(t, remove)
	})
}

func TestDedup(t *testing.T) {
	assert.Equal(t, []int{3, 1, 2}, Dedup([]int{3, 1, 3, 2, 1}))
	assert.Empty(t, Dedup[int](nil))
}

func TestDomainError(t *testing.T) {
	t.Run("matches by code through wrapping", func(t *testing.T) {
		err := fmt.Errorf("loading: %w", ErrNotFound.WithDetails(map[string]string{"id": "x"}))

		assert.True(t, errors.Is(err, ErrNotFound))
		assert.False(t, errors.Is(err, ErrAlreadyExists))
	})

	t.Run("unwraps cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := ErrTransactionFailed.WithCause(cause)

		assert.ErrorIs(t, err, cause)
		assert.Equal(t, ErrTransactionFailed.Message, err.Error())
		assert.Nil(t, ErrTransactionFailed.Cause)
	})

	t.Run("AsDomainError", func(t *testing.T) {
		de, ok := AsDomainError(fmt.Errorf("x: %w", ErrUpstream))
		require.True(t, ok)
		assert.Equal(t, CodeUpstream, de.Code)

		_, ok = AsDomainError(errors.New("plain"))
		assert.False(t, ok)
	})
}

func TestListFilter(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f := ListFilter{}.Normalize()

		assert.Equal(t, 1, f.Page)
		assert.Equal(t, DefaultPageSize, f.PageSize)
		assert.Equal(t, 0, ListFilter{}.Offset())
		assert.Equal(t, 15, ListFilter{}.Limit())
	})

	t.Run("offset and max page size", func(t *testing.T) {
		f := ListFilter{Page: 3, PageSize: 500}

		assert.Equal(t, MaxPageSize, f.Limit())
		assert.Equal(t, 200, f.Offset())
	})

	t.Run("status values", func(t *testing.T) {
		assert.Nil(t, ListFilter{}.ActiveValue())
		assert.True(t, *ListFilter{Status: StatusActive}.ActiveValue())
		assert.False(t, *ListFilter{Status: StatusInactive}.ActiveValue())
		assert.Equal(t, "", ListFilter{Status: "bogus"}.Normalize().Status)
	})
}

func TestNewPage(t *testing.T) {
	p := NewPage([]string{"a"}, 31, ListFilter{Status: StatusActive, Search: " foo "})

	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, "ativo", p.Filters["status"])
	assert.Equal(t, "foo", p.Filters["search"])

	empty := NewPage[string](nil, 0, ListFilter{})
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "01310100", DigitsOnly("01310-100"))
	assert.Equal(t, "", DigitsOnly("abc"))
	assert.Equal(t, "3", DigitsOnly("١٢3"), "non-ascii digits are dropped")
}

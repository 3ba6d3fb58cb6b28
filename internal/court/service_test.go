package court

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	courts map[string]*Court
	seq    int
}

func (m *memRepo) Create(_ context.Context, c *Court) error {
	m.seq++
	c.ID = fmt.Sprintf("court-%d", m.seq)
	cp := *c
	m.courts[c.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Court, error) {
	c, ok := m.courts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) List(_ context.Context, f Filter) ([]*Court, int, error) {
	var out []*Court
	for _, c := range m.courts {
		if f.ActiveOnly && !c.IsActive {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (m *memRepo) Update(_ context.Context, c *Court) error {
	if _, ok := m.courts[c.ID]; !ok {
		return ErrNotFound
	}
	cp := *c
	m.courts[c.ID] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.courts[id]; !ok {
		return ErrNotFound
	}
	delete(m.courts, id)
	return nil
}

func TestService_Create(t *testing.T) {
	svc := NewService(&memRepo{courts: map[string]*Court{}})
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateRequest{Name: "  Court 1 "})
	require.NoError(t, err)
	assert.Equal(t, "Court 1", c.Name)
	assert.Equal(t, DefaultColor, c.Color)
	assert.True(t, c.IsActive)

	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"empty name", CreateRequest{Name: " "}, ErrEmptyName},
		{"bad color", CreateRequest{Name: "A", Color: "blue"}, ErrInvalidColor},
		{"short hex ok", CreateRequest{Name: "A", Color: "#abc"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestService_UpdateAndList(t *testing.T) {
	repo := &memRepo{courts: map[string]*Court{}}
	svc := NewService(repo)
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateRequest{Name: "Court 1"})
	require.NoError(t, err)

	inactive := false
	color := "#FF0000"
	updated, err := svc.Update(ctx, c.ID, UpdateRequest{IsActive: &inactive, Color: &color})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "#FF0000", updated.Color)

	active, total, err := svc.List(ctx, Filter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.Zero(t, total)

	_, err = svc.Update(ctx, "missing", UpdateRequest{})
	assert.ErrorIs(t, err, ErrNotFound)
}

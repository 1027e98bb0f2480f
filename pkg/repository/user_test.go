package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
	"github.com/secmon-lab/themis/pkg/domain/model"
	"github.com/secmon-lab/themis/pkg/domain/types"
)

func runUserRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	seed := func(t *testing.T, repo interfaces.Repository) {
		users := []*model.User{
			{ID: "worker-b", Name: "Bob", Role: types.RoleAssignee, Active: true},
			{ID: "worker-a", Name: "Alice", Role: types.RoleAssignee, Active: true},
			{ID: "worker-c", Name: "Carol", Role: types.RoleAssignee, Active: false},
			{ID: "admin-1", Name: "Dana", Role: types.RoleApprover, Active: true},
		}
		for _, u := range users {
			gt.NoError(t, repo.User().Put(context.Background(), u)).Required()
		}
	}

	t.Run("Get returns stored user", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		u, err := repo.User().Get(context.Background(), "admin-1")
		gt.NoError(t, err).Required()
		gt.Value(t, u.Name).Equal("Dana")
		gt.Value(t, u.Role).Equal(types.RoleApprover)
		gt.Bool(t, u.CreatedAt.IsZero()).False()
	})

	t.Run("Get returns ErrNotFound for unknown user", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.User().Get(context.Background(), "nobody")
		gt.Error(t, err).Is(interfaces.ErrNotFound)
	})

	t.Run("ListByRole sorts by name and skips inactive users", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		workers, err := repo.User().ListByRole(context.Background(), types.RoleAssignee, false)
		gt.NoError(t, err).Required()
		gt.Array(t, workers).Length(2)
		gt.Value(t, workers[0].Name).Equal("Alice")
		gt.Value(t, workers[1].Name).Equal("Bob")

		all, err := repo.User().ListByRole(context.Background(), types.RoleAssignee, true)
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(3)
	})

	t.Run("GetMany skips unknown IDs", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)

		users, err := repo.User().GetMany(context.Background(), []string{"worker-a", "ghost", "admin-1"})
		gt.NoError(t, err).Required()
		gt.Value(t, len(users)).Equal(2)
		gt.Value(t, users["worker-a"].Name).Equal("Alice")
	})

	t.Run("Put replaces existing user", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo)
		ctx := context.Background()

		gt.NoError(t, repo.User().Put(ctx, &model.User{ID: "worker-a", Name: "Alice", Role: types.RoleAssignee, Active: false})).Required()
		u, err := repo.User().Get(ctx, "worker-a")
		gt.NoError(t, err).Required()
		gt.Bool(t, u.Active).False()
	})

	t.Run("Put rejects invalid role", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.User().Put(context.Background(), &model.User{ID: "x", Name: "X", Role: "root"})
		gt.Value(t, err).NotNil()
	})
}

func TestUserRepository(t *testing.T) {
	runAllBackends(t, runUserRepositoryTest)
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/MAKAMOUL/prophoneplus/internal/model"
	"github.com/MAKAMOUL/prophoneplus/internal/repository"
)

func TestAddUser(t *testing.T) {
	svc := NewUserService(repository.NewTestStore(t))
	ctx := context.Background()

	u, err := svc.AddUser(ctx, UserInput{Email: "sam@shop.example", Name: "Sam", Role: model.RoleWorker})
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if u.ID == "" {
		t.Error("expected generated id")
	}

	got, err := svc.User(ctx, u.ID)
	if err != nil {
		t.Fatalf("User: %v", err)
	}
	if got.Email != "sam@shop.example" || got.Role != model.RoleWorker {
		t.Errorf("unexpected stored user: %+v", got)
	}
}

func TestAddUserValidation(t *testing.T) {
	svc := NewUserService(repository.NewTestStore(t))
	ctx := context.Background()

	cases := []struct {
		in   UserInput
		want error
	}{
		{UserInput{Email: "sam@shop.example", Role: model.RoleWorker}, ErrNameRequired},
		{UserInput{Email: "not-an-email", Name: "Sam", Role: model.RoleWorker}, ErrEmailRequired},
		{UserInput{Email: "sam@shop.example", Name: "Sam", Role: "owner"}, ErrInvalidRole},
	}
	for _, tc := range cases {
		if _, err := svc.AddUser(ctx, tc.in); !errors.Is(err, tc.want) {
			t.Errorf("AddUser(%+v): expected %v, got %v", tc.in, tc.want, err)
		}
	}
}

func TestAddUserDuplicateEmail(t *testing.T) {
	svc := NewUserService(repository.NewTestStore(t))
	ctx := context.Background()

	in := UserInput{Email: "sam@shop.example", Name: "Sam", Role: model.RoleWorker}
	if _, err := svc.AddUser(ctx, in); err != nil {
		t.Fatalf("AddUser: %v", err)
	}

	if _, err := svc.AddUser(ctx, in); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	svc := NewUserService(repository.NewTestStore(t))
	ctx := context.Background()

	u, _ := svc.AddUser(ctx, UserInput{Email: "sam@shop.example", Name: "Sam", Role: model.RoleWorker})
	other, _ := svc.AddUser(ctx, UserInput{Email: "alex@shop.example", Name: "Alex", Role: model.RoleAdmin})

	updated, err := svc.UpdateUser(ctx, u.ID, UserInput{Email: "sam@shop.example", Name: "Sam", Role: model.RoleAdmin})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Role != model.RoleAdmin {
		t.Errorf("expected promoted role, got %q", updated.Role)
	}

	// Taking another account's email is rejected.
	if _, err := svc.UpdateUser(ctx, u.ID, UserInput{Email: other.Email, Name: "Sam", Role: model.RoleWorker}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	if _, err := svc.UpdateUser(ctx, "missing", UserInput{Email: "x@shop.example", Name: "X", Role: model.RoleWorker}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

package services

import (
	"context"
	"testing"

	"github.com/akinalp/wordless/models"
	"github.com/akinalp/wordless/pkg"
)

func TestProfileGetAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	svc := NewProfileService(env.users)
	ctx := context.Background()

	_, err := svc.Get(ctx, "alice")
	assertCode(t, err, pkg.CodeProfileNotFound)

	_, err = svc.Update(ctx, "alice", models.UpdateProfileRequest{UserName: "   "})
	assertCode(t, err, pkg.CodeProfileInvalid)

	created, err := svc.Update(ctx, "alice", models.UpdateProfileRequest{UserName: " Alice "})
	if err != nil {
		t.Fatal(err)
	}
	if created.UserName != "Alice" || created.ID == "" {
		t.Errorf("created = %+v", created)
	}

	updated, err := svc.Update(ctx, "alice", models.UpdateProfileRequest{
		UserName:  "Alice B",
		AvatarURL: strp("https://cdn.example.com/a.png"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.ID != created.ID {
		t.Errorf("update changed id %s → %s", created.ID, updated.ID)
	}

	got, err := svc.Get(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if got.UserName != "Alice B" || got.AvatarURL == nil {
		t.Errorf("got = %+v", got)
	}
}

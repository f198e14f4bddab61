package authz

import (
	"testing"

	"github.com/Githubuser102234/ClassNow/models"
)

var (
	owner    = models.User{ID: 1, DisplayName: "Owner"}
	member   = models.User{ID: 2, DisplayName: "Member"}
	stranger = models.User{ID: 3, DisplayName: "Stranger"}
	banned   = models.User{ID: 4, DisplayName: "Banned", IsBanned: true}
)

func class() models.Class {
	return models.Class{ID: "c1", Title: "Algebra", CreatorID: owner.ID}
}

func decide(actor models.User, cl models.Class, isMember bool, action Action) Decision {
	return CanPerform(Input{Actor: actor, Class: cl, IsMember: isMember}, action)
}

func TestDeleteClassOwnerOnly(t *testing.T) {
	cl := class()
	if d := decide(owner, cl, true, ActionDeleteClass); !d.Allowed {
		t.Fatalf("owner must be allowed to delete own class, got reason %s", d.Reason)
	}
	if d := decide(member, cl, true, ActionDeleteClass); d.Allowed || d.Reason != ReasonNotOwner {
		t.Fatalf("member must get not_owner, got %+v", d)
	}
	if d := decide(stranger, cl, false, ActionDeleteClass); d.Allowed || d.Reason != ReasonNotOwner {
		t.Fatalf("stranger must get not_owner, got %+v", d)
	}
}

func TestOwnerOnlyActions(t *testing.T) {
	cl := class()
	actions := []Action{
		ActionPostAssignment, ActionDeleteAssignment, ActionRemoveMember,
		ActionDeleteClass, ActionChangeSettings, ActionViewStatusMatrix,
	}
	for _, action := range actions {
		if d := decide(owner, cl, true, action); !d.Allowed {
			t.Fatalf("%s: owner denied with %s", action, d.Reason)
		}
		if d := decide(member, cl, true, action); d.Allowed || d.Reason != ReasonNotOwner {
			t.Fatalf("%s: member got %+v, want not_owner", action, d)
		}
	}
}

func TestBannedBeatsEverything(t *testing.T) {
	// Забаненный владелец должен получить именно banned, а не not_owner.
	cl := class()
	cl.CreatorID = banned.ID
	for _, action := range []Action{
		ActionCreateClass, ActionJoinClass, ActionViewClass, ActionPostAssignment,
		ActionDeleteClass, ActionToggleSubmission, ActionPostChatMessage, ActionViewChat,
	} {
		if d := decide(banned, cl, true, action); d.Allowed || d.Reason != ReasonBanned {
			t.Fatalf("%s: banned owner got %+v, want banned", action, d)
		}
	}
}

func TestCreateAndJoinAllowedForAnyone(t *testing.T) {
	cl := class()
	if d := decide(stranger, models.Class{}, false, ActionCreateClass); !d.Allowed {
		t.Fatalf("any non-banned user may create a class, got %s", d.Reason)
	}
	if d := decide(stranger, cl, false, ActionJoinClass); !d.Allowed {
		t.Fatalf("any non-banned user may join, got %s", d.Reason)
	}
	// Повторное вступление тоже разрешено.
	if d := decide(member, cl, true, ActionJoinClass); !d.Allowed {
		t.Fatalf("re-join must be allowed, got %s", d.Reason)
	}
}

func TestViewClassMembersOnly(t *testing.T) {
	cl := class()
	if d := decide(member, cl, true, ActionViewClass); !d.Allowed {
		t.Fatalf("member denied: %s", d.Reason)
	}
	// Владелец считается участником даже без строки членства.
	if d := decide(owner, cl, false, ActionViewClass); !d.Allowed {
		t.Fatalf("owner counts as member, got %s", d.Reason)
	}
	if d := decide(stranger, cl, false, ActionViewClass); d.Allowed || d.Reason != ReasonNotMember {
		t.Fatalf("stranger got %+v, want not_member", d)
	}
}

func TestToggleSubmission(t *testing.T) {
	cl := class()
	if d := decide(member, cl, true, ActionToggleSubmission); !d.Allowed {
		t.Fatalf("member denied: %s", d.Reason)
	}
	if d := decide(owner, cl, true, ActionToggleSubmission); d.Allowed || d.Reason != ReasonNotOwner {
		t.Fatalf("owner got %+v, want not_owner", d)
	}
	if d := decide(stranger, cl, false, ActionToggleSubmission); d.Allowed || d.Reason != ReasonNotMember {
		t.Fatalf("stranger got %+v, want not_member", d)
	}
}

func TestChatRules(t *testing.T) {
	cl := class()

	if d := decide(member, cl, true, ActionPostChatMessage); !d.Allowed {
		t.Fatalf("member denied in open chat: %s", d.Reason)
	}
	if d := decide(stranger, cl, false, ActionPostChatMessage); d.Allowed || d.Reason != ReasonNotMember {
		t.Fatalf("stranger got %+v, want not_member", d)
	}

	// chatDisabled запрещает писать всем, включая владельца.
	cl.ChatDisabled = true
	if d := decide(owner, cl, true, ActionPostChatMessage); d.Allowed || d.Reason != ReasonChatDisabled {
		t.Fatalf("owner in disabled chat got %+v, want chat_disabled", d)
	}
	if d := decide(member, cl, true, ActionViewChat); d.Allowed || d.Reason != ReasonChatDisabled {
		t.Fatalf("disabled chat must be hidden from members, got %+v", d)
	}
	if d := decide(owner, cl, true, ActionViewChat); d.Allowed || d.Reason != ReasonChatDisabled {
		t.Fatalf("disabled chat must be hidden from the owner too, got %+v", d)
	}

	// chatLocked запрещает писать всем, кроме владельца; читать можно всем
	// участникам.
	cl.ChatDisabled = false
	cl.ChatLocked = true
	if d := decide(owner, cl, true, ActionPostChatMessage); !d.Allowed {
		t.Fatalf("owner must write in locked chat, got %s", d.Reason)
	}
	if d := decide(member, cl, true, ActionPostChatMessage); d.Allowed || d.Reason != ReasonChatLocked {
		t.Fatalf("member in locked chat got %+v, want chat_locked", d)
	}
	if d := decide(member, cl, true, ActionViewChat); !d.Allowed {
		t.Fatalf("locked chat is still readable, got %s", d.Reason)
	}
}

func TestDecisionIsPure(t *testing.T) {
	cl := class()
	in := Input{Actor: member, Class: cl, IsMember: true}
	first := CanPerform(in, ActionViewClass)
	for i := 0; i < 5; i++ {
		if got := CanPerform(in, ActionViewClass); got != first {
			t.Fatalf("decision changed between calls: %+v vs %+v", first, got)
		}
	}
}

// classnow/internal/authz/authz.go

// Package authz содержит движок авторизации: чистую функцию решения
// "может ли пользователь выполнить действие в классе". Движок не ходит
// в базу и ничего не мутирует - все нужное состояние передается на вход,
// поэтому правила доступа тестируются отдельно от хранилища и HTTP.
package authz

import "github.com/Githubuser102234/ClassNow/models"

// Action - действие, запрашиваемое пользователем в рамках класса.
type Action string

const (
	ActionCreateClass      Action = "create_class"
	ActionJoinClass        Action = "join_class"
	ActionViewClass        Action = "view_class"
	ActionPostAssignment   Action = "post_assignment"
	ActionDeleteAssignment Action = "delete_assignment"
	ActionRemoveMember     Action = "remove_member"
	ActionDeleteClass      Action = "delete_class"
	ActionChangeSettings   Action = "change_chat_settings"
	ActionViewStatusMatrix Action = "view_status_matrix"
	ActionToggleSubmission Action = "toggle_submission"
	ActionPostChatMessage  Action = "post_chat_message"
	ActionViewChat         Action = "view_chat"
)

// Reason - дискриминатор причины отказа, уходит клиенту в поле "reason".
type Reason string

const (
	ReasonBanned       Reason = "banned"
	ReasonNotOwner     Reason = "not_owner"
	ReasonNotMember    Reason = "not_member"
	ReasonChatDisabled Reason = "chat_disabled"
	ReasonChatLocked   Reason = "chat_locked"
)

// Decision - результат проверки. Движок никогда не возвращает ошибку:
// либо Allowed, либо отказ с причиной.
type Decision struct {
	Allowed bool
	Reason  Reason
}

var allow = Decision{Allowed: true}

func deny(r Reason) Decision {
	return Decision{Reason: r}
}

// Input - срез состояния, по которому принимается решение. IsMember
// передается снаружи, чтобы функция оставалась чистой.
type Input struct {
	Actor    models.User
	Class    models.Class
	IsMember bool
}

// CanPerform применяет правила доступа в строгом порядке; первое
// сработавшее правило выигрывает. Порядок важен: бан проверяется раньше
// всего остального, поэтому забаненный владелец получает отказ "banned",
// а не "not_owner".
func CanPerform(in Input, action Action) Decision {
	isOwner := in.Actor.ID == in.Class.CreatorID
	// Владелец всегда считается участником своего класса.
	isMember := in.IsMember || isOwner

	if in.Actor.IsBanned {
		return deny(ReasonBanned)
	}

	switch action {
	case ActionCreateClass:
		return allow

	case ActionJoinClass:
		// Повторное вступление идемпотентно и тоже разрешено.
		return allow

	case ActionViewClass:
		if isMember {
			return allow
		}
		return deny(ReasonNotMember)

	case ActionPostAssignment, ActionDeleteAssignment, ActionRemoveMember,
		ActionDeleteClass, ActionChangeSettings, ActionViewStatusMatrix:
		if isOwner {
			return allow
		}
		return deny(ReasonNotOwner)

	case ActionToggleSubmission:
		// Владелец не может отмечать собственные задания выполненными.
		if isOwner {
			return deny(ReasonNotOwner)
		}
		if isMember {
			return allow
		}
		return deny(ReasonNotMember)

	case ActionPostChatMessage:
		if in.Class.ChatDisabled {
			return deny(ReasonChatDisabled)
		}
		if in.Class.ChatLocked && !isOwner {
			return deny(ReasonChatLocked)
		}
		if isMember {
			return allow
		}
		return deny(ReasonNotMember)

	case ActionViewChat:
		// Выключенный чат скрыт целиком, в том числе от владельца.
		if in.Class.ChatDisabled {
			return deny(ReasonChatDisabled)
		}
		if isMember {
			return allow
		}
		return deny(ReasonNotMember)
	}

	// Неизвестное действие не разрешаем никому.
	return deny(ReasonNotMember)
}

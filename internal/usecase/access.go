package usecase

import (
	"event-ticketing/internal/data/entity"
	"event-ticketing/pkg/apperror"
)

// Caller is the identity the auth layer attached to the request
type Caller struct {
	ID   int64
	Role entity.UserRole
}

func (c Caller) IsAdmin() bool { return c.Role == entity.RoleAdmin }

type Action string

const (
	ActionLockSeat          Action = "seat:lock"
	ActionUnlockSeat        Action = "seat:unlock"
	ActionCreateBooking     Action = "booking:create"
	ActionViewBooking       Action = "booking:view"
	ActionListOwnBookings   Action = "booking:list_customer"
	ActionListAllBookings   Action = "booking:list_all"
	ActionPayBooking        Action = "booking:pay"
	ActionDeleteBooking     Action = "booking:delete"
	ActionCancelBooking     Action = "booking:cancel"
	ActionScanTicket        Action = "ticket:scan"
	ActionMarkTicketUsed    Action = "ticket:use"
	ActionListEventCheckIns Action = "checkin:list_event"
)

var everyRole = []entity.UserRole{entity.RoleCustomer, entity.RoleOrganizer, entity.RoleStaff, entity.RoleAdmin}

// rule: any role in anyOf is allowed outright; a role in ownerOf is allowed
// only on resources it owns. Admin is always allowed.
type rule struct {
	anyOf   []entity.UserRole
	ownerOf []entity.UserRole
	denial  string
}

var rules = map[Action]rule{
	ActionLockSeat:          {anyOf: []entity.UserRole{entity.RoleCustomer}, denial: "only customers can hold seats"},
	ActionUnlockSeat:        {ownerOf: everyRole, denial: "seat is held by another customer"},
	ActionCreateBooking:     {ownerOf: []entity.UserRole{entity.RoleCustomer}, denial: "customers can only book for themselves"},
	ActionViewBooking:       {anyOf: []entity.UserRole{entity.RoleStaff}, ownerOf: everyRole, denial: "you can only view your own bookings"},
	ActionListOwnBookings:   {ownerOf: everyRole, denial: "you can only list your own bookings"},
	ActionListAllBookings:   {denial: "admin access required"},
	ActionPayBooking:        {ownerOf: everyRole, denial: "you can only pay for your own bookings"},
	ActionDeleteBooking:     {ownerOf: everyRole, denial: "you can only delete your own bookings"},
	ActionCancelBooking:     {denial: "admin access required"},
	ActionScanTicket:        {anyOf: []entity.UserRole{entity.RoleStaff}, denial: "staff access required"},
	ActionMarkTicketUsed:    {anyOf: []entity.UserRole{entity.RoleStaff}, denial: "staff access required"},
	ActionListEventCheckIns: {anyOf: []entity.UserRole{entity.RoleStaff}, denial: "staff access required"},
}

// Authorize is the single capability check. ownerID is the customer owning
// the resource, or 0 when the resource has no owner.
func Authorize(caller Caller, action Action, ownerID int64) error {
	if caller.ID <= 0 || !caller.Role.Valid() {
		return apperror.Unauthorized("authentication required")
	}

	r, ok := rules[action]
	if !ok {
		return apperror.Forbidden("action not permitted")
	}

	if caller.IsAdmin() || hasRole(r.anyOf, caller.Role) {
		return nil
	}
	if ownerID > 0 && ownerID == caller.ID && hasRole(r.ownerOf, caller.Role) {
		return nil
	}

	return apperror.Forbidden(r.denial)
}

func hasRole(roles []entity.UserRole, role entity.UserRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

package screens

import (
	"context"
	"strconv"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/export"
	"github.com/sm-junior0/ndarehe-sub001/internal/forms"
	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

var userColumns = []export.Column[models.User]{
	{Header: "ID", Value: func(u models.User) string { return u.ID }},
	{Header: "First Name", Value: func(u models.User) string { return u.FirstName }},
	{Header: "Last Name", Value: func(u models.User) string { return u.LastName }},
	{Header: "Email", Value: func(u models.User) string { return u.Email }},
	{Header: "Phone", Value: func(u models.User) string { return u.Phone }},
	{Header: "Role", Value: func(u models.User) string { return string(u.Role) }},
	{Header: "Verified", Value: func(u models.User) string { return formatBool(u.IsVerified) }},
	{Header: "Active", Value: func(u models.User) string { return formatBool(u.IsActive) }},
	{Header: "Bookings", Value: func(u models.User) string { return strconv.Itoa(u.BookingsCount) }},
	{Header: "Created", Value: func(u models.User) string { return formatDate(u.CreatedAt) }},
}

func userFields() *forms.Fields {
	return forms.NewFields(
		forms.Text("firstName", "First name").Require(),
		forms.Text("lastName", "Last name"),
		forms.Text("email", "Email").Require(),
		forms.Text("phone", "Phone"),
		forms.Text("password", "Password"),
		forms.Text("role", "Role").WithDefault(string(models.RoleUser)),
		forms.Bool("isActive", "Active").WithDefault("true"),
	)
}

func buildUserInput(f *forms.Fields) models.UserInput {
	return models.UserInput{
		FirstName: f.String("firstName"),
		LastName:  f.String("lastName"),
		Email:     f.String("email"),
		Phone:     f.String("phone"),
		Password:  f.String("password"),
		Role:      models.UserRole(f.String("role")),
		IsActive:  f.Bool("isActive"),
	}
}

// Users is the user management screen. Filters: role, isActive, isVerified.
type Users struct {
	*Screen[models.User, models.UserInput]
	client *api.Client
}

func NewUsers(client *api.Client, opts Options) *Users {
	spec := formSpec[models.User, models.UserInput]{fields: userFields, build: buildUserInput}
	return &Users{
		Screen: newScreen("users", "user", Resource[models.User, models.UserInput](client.Users()), userColumns, spec, opts, nil),
		client: client,
	}
}

// SetActive activates or deactivates one account.
func (u *Users) SetActive(ctx context.Context, id string, active bool) error {
	return u.toggle(ctx, id, "status", "isActive="+formatBool(active),
		func(ctx context.Context) error {
			_, err := u.client.SetUserStatus(ctx, id, active)
			return err
		},
		func(user models.User) models.User {
			user.IsActive = active
			return user
		})
}

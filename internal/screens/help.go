package screens

import (
	"context"
	"strconv"
	"strings"

	"github.com/sm-junior0/ndarehe-sub001/internal/api"
	"github.com/sm-junior0/ndarehe-sub001/internal/events"
	"github.com/sm-junior0/ndarehe-sub001/internal/export"
	"github.com/sm-junior0/ndarehe-sub001/internal/forms"
	"github.com/sm-junior0/ndarehe-sub001/internal/models"
)

var articleColumns = []export.Column[models.HelpArticle]{
	{Header: "ID", Value: func(a models.HelpArticle) string { return a.ID }},
	{Header: "Title", Value: func(a models.HelpArticle) string { return a.Title }},
	{Header: "Category", Value: func(a models.HelpArticle) string { return a.Category }},
	{Header: "Tags", Value: func(a models.HelpArticle) string { return strings.Join(a.Tags, ", ") }},
	{Header: "Published", Value: func(a models.HelpArticle) string { return formatBool(a.IsPublished) }},
	{Header: "Views", Value: func(a models.HelpArticle) string { return strconv.Itoa(a.Views) }},
	{Header: "Created", Value: func(a models.HelpArticle) string { return formatDate(a.CreatedAt) }},
}

var ticketColumns = []export.Column[models.SupportTicket]{
	{Header: "ID", Value: func(t models.SupportTicket) string { return t.ID }},
	{Header: "Subject", Value: func(t models.SupportTicket) string { return t.Subject }},
	{Header: "Name", Value: func(t models.SupportTicket) string { return t.Name }},
	{Header: "Email", Value: func(t models.SupportTicket) string { return t.Email }},
	{Header: "Status", Value: func(t models.SupportTicket) string { return string(t.Status) }},
	{Header: "Priority", Value: func(t models.SupportTicket) string { return string(t.Priority) }},
	{Header: "Created", Value: func(t models.SupportTicket) string { return formatDate(t.CreatedAt) }},
}

func articleFields() *forms.Fields {
	return forms.NewFields(
		forms.Text("categoryId", "Category").Require(),
		forms.Text("title", "Title").Require(),
		forms.Text("content", "Content"),
		forms.List("tags", "Tags"),
		forms.Bool("isPublished", "Published").WithDefault("false"),
	)
}

func buildArticleInput(f *forms.Fields) models.HelpArticleInput {
	return models.HelpArticleInput{
		CategoryID:  f.String("categoryId"),
		Title:       f.String("title"),
		Content:     f.String("content"),
		Tags:        f.List("tags"),
		IsPublished: f.Bool("isPublished"),
	}
}

func ticketFields() *forms.Fields {
	return forms.NewFields(
		forms.Text("name", "Name"),
		forms.Text("email", "Email").Require(),
		forms.Text("subject", "Subject").Require(),
		forms.Text("message", "Message"),
		forms.Text("priority", "Priority").WithDefault(string(models.PriorityMedium)),
	)
}

func buildTicketInput(f *forms.Fields) models.SupportTicketInput {
	return models.SupportTicketInput{
		Name:     f.String("name"),
		Email:    f.String("email"),
		Subject:  f.String("subject"),
		Message:  f.String("message"),
		Priority: models.TicketPriority(strings.ToUpper(f.String("priority"))),
	}
}

// HelpDesk groups the help center: categories, articles and support tickets.
type HelpDesk struct {
	client *api.Client
	bus    events.Publisher

	Articles *Screen[models.HelpArticle, models.HelpArticleInput]
	Tickets  *Screen[models.SupportTicket, models.SupportTicketInput]
}

func NewHelpDesk(client *api.Client, articles, tickets Options) *HelpDesk {
	return &HelpDesk{
		client: client,
		bus:    articles.Bus,
		Articles: newScreen("articles", "article", Resource[models.HelpArticle, models.HelpArticleInput](client.HelpArticles()), articleColumns,
			formSpec[models.HelpArticle, models.HelpArticleInput]{fields: articleFields, build: buildArticleInput}, articles, nil),
		Tickets: newScreen("tickets", "ticket", Resource[models.SupportTicket, models.SupportTicketInput](client.SupportTickets()), ticketColumns,
			formSpec[models.SupportTicket, models.SupportTicketInput]{fields: ticketFields, build: buildTicketInput}, tickets, nil),
	}
}

// Categories lists help categories. Failures also raise an error notice.
func (h *HelpDesk) Categories(ctx context.Context) ([]models.HelpCategory, error) {
	cats, err := h.client.HelpCategories(ctx)
	if err != nil {
		events.Notify(h.bus, events.Notice{Level: events.LevelError, Resource: "categories", Message: api.Message(err, "Failed to fetch help categories")})
		return nil, err
	}
	return cats, nil
}

// SetTicketStatus moves one ticket through its workflow.
func (h *HelpDesk) SetTicketStatus(ctx context.Context, id string, status models.TicketStatus) error {
	return h.Tickets.toggle(ctx, id, "status", "status="+string(status),
		func(ctx context.Context) error {
			_, err := h.client.SetTicketStatus(ctx, id, status)
			return err
		},
		func(t models.SupportTicket) models.SupportTicket {
			t.Status = status
			return t
		})
}

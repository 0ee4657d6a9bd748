package models

import "time"

type HelpCategory struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ArticleCount int    `json:"articleCount"`
}

func (c HelpCategory) RecordID() string {
	return c.ID
}

type HelpArticle struct {
	ID          string    `json:"id"`
	CategoryID  string    `json:"categoryId"`
	Category    string    `json:"category,omitempty"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags"`
	IsPublished bool      `json:"isPublished"`
	Views       int       `json:"views"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (a HelpArticle) RecordID() string {
	return a.ID
}

type HelpArticleInput struct {
	CategoryID  string   `json:"categoryId"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	IsPublished bool     `json:"isPublished"`
}

type SupportTicket struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId,omitempty"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Subject   string         `json:"subject"`
	Message   string         `json:"message"`
	Status    TicketStatus   `json:"status"`
	Priority  TicketPriority `json:"priority"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (t SupportTicket) RecordID() string {
	return t.ID
}

type SupportTicketInput struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Subject  string         `json:"subject"`
	Message  string         `json:"message"`
	Priority TicketPriority `json:"priority"`
}

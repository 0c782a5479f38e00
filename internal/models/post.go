package models

import "strings"

// Post is an entry of the class feed.
type Post struct {
	ID        string `json:"id" yaml:"id"`
	Author    string `json:"author" yaml:"author"`
	Body      string `json:"body" yaml:"body"`
	Audience  string `json:"audience,omitempty" yaml:"audience,omitempty"`
	CreatedAt string `json:"createdAt" yaml:"createdAt"`
	Status    Status `json:"status" yaml:"status"`
}

func (p Post) EntityID() string { return p.ID }

func (p Post) WithStatus(s Status) Post {
	p.Status = s
	return p
}

func (p Post) Allows(s Status) bool { return oneOf(s, StatusPublished, StatusHidden) }

type PostDraft struct {
	Author   string
	Body     string
	Audience string
}

func (d PostDraft) Validate() error {
	if strings.TrimSpace(d.Body) == "" {
		return errEmpty("post needs a body")
	}
	return nil
}

func (d PostDraft) Build(id, createdAt string) Post {
	return Post{
		ID:        id,
		Author:    d.Author,
		Body:      d.Body,
		Audience:  d.Audience,
		CreatedAt: createdAt,
		Status:    StatusPublished,
	}
}

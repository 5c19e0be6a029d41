// Package crm pushes finished drafts to the team's Notion outreach board.
package crm

import (
	"context"
	"time"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/notion"
)

// Property names in the drafts database.
const (
	PropCompany     = "Company"
	PropCEO         = "CEO"
	PropCEOEmail    = "CEO Email"
	PropSubject     = "Subject"
	PropStatus      = "Status"
	PropGeneratedBy = "Generated By"
	PropDrafted     = "Drafted"

	StatusDrafted = "Drafted"
)

// NotionSink upserts one page per company in a Notion database. A new page
// carries the email body; a page that already exists gets its properties
// refreshed and the new body appended.
type NotionSink struct {
	client notion.Client
	dbID   string
}

// NewNotionSink creates a sink for the drafts database dbID.
func NewNotionSink(client notion.Client, dbID string) *NotionSink {
	return &NotionSink{client: client, dbID: dbID}
}

func (s *NotionSink) Name() string { return "notion" }

// Record writes rec to Notion. Cache hits are skipped since the page
// already exists.
func (s *NotionSink) Record(ctx context.Context, rec model.DraftRecord) error {
	if rec.CacheHit {
		return nil
	}
	log := zap.L().With(zap.String("company", rec.CompanyName))

	existing, err := notion.FindByTitle(ctx, s.client, s.dbID, PropCompany, rec.CompanyName)
	if err != nil {
		return eris.Wrap(err, "crm: lookup draft page")
	}

	if existing == nil {
		page, err := s.client.CreatePage(ctx, &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:       notionapi.ParentTypeDatabaseID,
				DatabaseID: notionapi.DatabaseID(s.dbID),
			},
			Properties: properties(rec, true),
			Children:   notion.Paragraphs(rec.Draft.Body),
		})
		if err != nil {
			return eris.Wrap(err, "crm: create draft page")
		}
		log.Info("crm: draft page created", zap.String("page_id", string(page.ID)))
		return nil
	}

	pageID := string(existing.ID)
	if _, err := s.client.UpdatePage(ctx, pageID, &notionapi.PageUpdateRequest{
		Properties: properties(rec, false),
	}); err != nil {
		return eris.Wrap(err, "crm: update draft page")
	}
	blocks := append(notion.Paragraphs("Regenerated "+rec.CreatedAt.UTC().Format(time.RFC3339)), notion.Paragraphs(rec.Draft.Body)...)
	if err := s.client.AppendBlocks(ctx, pageID, blocks); err != nil {
		return eris.Wrap(err, "crm: append draft body")
	}
	log.Info("crm: draft page updated", zap.String("page_id", pageID))
	return nil
}

func properties(rec model.DraftRecord, withTitle bool) notionapi.Properties {
	drafted := notionapi.Date(rec.CreatedAt)
	if rec.CreatedAt.IsZero() {
		drafted = notionapi.Date(time.Now().UTC())
	}
	props := notionapi.Properties{
		PropCEO:     notion.RichText(rec.Facts.Contact()),
		PropSubject: notion.RichText(rec.Draft.Subject),
		PropStatus: notionapi.StatusProperty{
			Status: notionapi.Status{Name: StatusDrafted},
		},
		PropGeneratedBy: notionapi.SelectProperty{
			Select: notionapi.Option{Name: rec.Draft.GeneratedBy},
		},
		PropDrafted: notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &drafted},
		},
	}
	if rec.CEOEmail != "" {
		props[PropCEOEmail] = notionapi.EmailProperty{
			Type:  notionapi.PropertyTypeEmail,
			Email: rec.CEOEmail,
		}
	}
	if withTitle {
		props[PropCompany] = notion.Title(rec.CompanyName)
	}
	return props
}

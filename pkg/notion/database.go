package notion

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// maxTextLen is Notion's limit for a single rich text object.
const maxTextLen = 2000

// QueryAll fetches all pages from a Notion database, following cursors.
// The next page is requested in a goroutine while the current one is
// appended.
func QueryAll(ctx context.Context, c Client, dbID string, filter *notionapi.DatabaseQueryRequest) ([]notionapi.Page, error) {
	var all []notionapi.Page

	next := func(cursor notionapi.Cursor) *notionapi.DatabaseQueryRequest {
		req := &notionapi.DatabaseQueryRequest{StartCursor: cursor}
		if filter != nil {
			req.Filter = filter.Filter
			req.Sorts = filter.Sorts
			req.PageSize = filter.PageSize
		}
		return req
	}

	type prefetchResult struct {
		resp *notionapi.DatabaseQueryResponse
		err  error
	}
	var prefetchCh <-chan prefetchResult

	for {
		var (
			resp *notionapi.DatabaseQueryResponse
			err  error
		)
		if prefetchCh != nil {
			r := <-prefetchCh
			resp, err = r.resp, r.err
		} else {
			resp, err = c.QueryDatabase(ctx, dbID, next(""))
		}
		if err != nil {
			return nil, eris.Wrap(err, "notion: query all page")
		}

		all = append(all, resp.Results...)
		if !resp.HasMore {
			break
		}

		ch := make(chan prefetchResult, 1)
		prefetchCh = ch
		req := next(resp.NextCursor)
		go func() {
			r, e := c.QueryDatabase(ctx, dbID, req)
			ch <- prefetchResult{resp: r, err: e}
		}()
	}

	return all, nil
}

// FindByTitle returns the first page whose title property equals title, or
// nil when there is none.
func FindByTitle(ctx context.Context, c Client, dbID, property, title string) (*notionapi.Page, error) {
	resp, err := c.QueryDatabase(ctx, dbID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: property,
			RichText: &notionapi.TextFilterCondition{Equals: title},
		},
		PageSize: 1,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "notion: find %q", title)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return &resp.Results[0], nil
}

// Title builds a title property value.
func Title(s string) notionapi.TitleProperty {
	return notionapi.TitleProperty{Type: notionapi.PropertyTypeTitle, Title: Text(s)}
}

// RichText builds a rich text property value.
func RichText(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{Type: notionapi.PropertyTypeRichText, RichText: Text(s)}
}

// Text splits s into rich text objects no longer than Notion allows.
func Text(s string) []notionapi.RichText {
	chunks := chunk(s, maxTextLen)
	out := make([]notionapi.RichText, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, notionapi.RichText{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: c}})
	}
	return out
}

// Paragraphs turns blank-line separated text into paragraph blocks.
func Paragraphs(s string) []notionapi.Block {
	var blocks []notionapi.Block
	for _, para := range strings.Split(s, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		blocks = append(blocks, &notionapi.ParagraphBlock{
			BasicBlock: notionapi.BasicBlock{
				Object: notionapi.ObjectTypeBlock,
				Type:   notionapi.BlockTypeParagraph,
			},
			Paragraph: notionapi.Paragraph{RichText: Text(para)},
		})
	}
	return blocks
}

// chunk splits s into pieces of at most n runes.
func chunk(s string, n int) []string {
	if s == "" {
		return nil
	}
	runes := []rune(s)
	var out []string
	for len(runes) > n {
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	return append(out, string(runes))
}

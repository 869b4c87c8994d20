package ovation

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	perr "surveysync/internal/platform/errors"
)

const surveysListPath = "/surveys/list"

// ListQuery selects one page of surveys by creation time
type ListQuery struct {
	CreatedFrom time.Time
	CreatedTo   time.Time
	CompanyIDs  []string
	Limit       int
	Skip        int
}

type listRequest struct {
	Filters listFilters    `json:"filters"`
	Limit   int            `json:"limit"`
	Skip    int            `json:"skip"`
	Sort    map[string]int `json:"sort"`
}

type listFilters struct {
	CreatedAtRange [2]string `json:"created_at_range"`
	CompanyIDs     []string  `json:"company_ids"`
}

type listResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Data    *listData `json:"data"`
}

// surveys are decoded one by one so a bad record does not sink its page
type listData struct {
	Surveys []json.RawMessage `json:"surveys"`
}

// ListSurveys fetches one page of surveys sorted ascending by created_at
// an unsuccessful envelope is Unavailable; a successful one without surveys is an empty page
// a record that cannot be decoded is returned with Err set and keeps its place in the page
func (c *Client) ListSurveys(ctx context.Context, tok Token, q ListQuery) ([]Survey, error) {
	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer "+tok.AccessToken)
	hdr.Set("X-Api-Key", tok.APIKey)

	companies := q.CompanyIDs
	if companies == nil {
		companies = []string{}
	}

	var out listResponse
	err := c.post(ctx, surveysListPath, hdr, listRequest{
		Filters: listFilters{
			CreatedAtRange: [2]string{
				q.CreatedFrom.UTC().Format(time.RFC3339Nano),
				q.CreatedTo.UTC().Format(time.RFC3339Nano),
			},
			CompanyIDs: companies,
		},
		Limit: q.Limit,
		Skip:  q.Skip,
		Sort:  map[string]int{"created_at": 1},
	}, &out)
	if err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, perr.Unavailablef("ovation %s: response was not successful", surveysListPath)
	}
	if out.Data == nil {
		return nil, nil
	}
	page := make([]Survey, 0, len(out.Data.Surveys))
	for _, raw := range out.Data.Surveys {
		page = append(page, decodeSurvey(raw))
	}
	return page, nil
}

func decodeSurvey(raw json.RawMessage) Survey {
	var sv Survey
	if err := json.Unmarshal(raw, &sv); err != nil {
		var id struct {
			ID string `json:"_id"`
		}
		_ = json.Unmarshal(raw, &id)
		return Survey{ID: id.ID, Err: perr.Wrapf(err, perr.ErrorCodeJSON, "ovation survey %q decode", id.ID)}
	}
	return sv
}

package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/betterlb/openlgu/pkg/db"
	"github.com/betterlb/openlgu/pkg/legparse"
	"github.com/betterlb/openlgu/pkg/reconcile"
)

type parseRequest struct {
	Content *string `json:"content"`
	URL     string  `json:"url"`
}

type parseResponse struct {
	Success        bool                   `json:"success"`
	SessionInfo    legparse.SessionInfo   `json:"session_info"`
	Items          []*legparse.Item       `json:"items"`
	MatchedPersons map[string]*matchEntry `json:"matched_persons"`
}

// matchEntry mirrors match.Match; it exists so the web layer controls the
// response shape independent of the matcher package.
type matchEntry struct {
	PersonID   int64   `json:"person_id"`
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// handleParsePost parses a legislative post into structured items and
// resolves every mentioned name against the person roster. Unmatched names
// appear as explicit nulls so the review UI can offer person creation.
func (s *Server) handleParsePost(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "content must be a string")
		return
	}

	content := ""
	if req.Content != nil {
		content = *req.Content
	}
	if strings.TrimSpace(content) == "" && req.URL != "" {
		fetched, err := s.Fetch(c.Request.Context(), req.URL)
		if err != nil {
			s.logf("fetch %s: %v", req.URL, err)
			fail(c, http.StatusBadGateway, "could not fetch post url")
			return
		}
		content = fetched
	}
	if strings.TrimSpace(content) == "" {
		fail(c, http.StatusBadRequest, "content is required")
		return
	}

	sessionInfo := legparse.ParseSessionInfo(content)
	items := []*legparse.Item{}
	var names []string
	for _, block := range legparse.SegmentItems(content) {
		item := legparse.ParseBlock(block)
		if item == nil {
			continue
		}
		items = append(items, item)
		names = append(names, item.Authors...)
		names = append(names, item.CoAuthors...)
		names = append(names, item.SecondedBy...)
		if item.MovedBy != "" {
			names = append(names, item.MovedBy)
		}
	}

	matched, err := s.Matcher.MatchAll(names)
	if err != nil {
		s.logf("match persons: %v", err)
		fail(c, http.StatusInternalServerError, "person matching failed")
		return
	}
	persons := make(map[string]*matchEntry, len(matched))
	for raw, m := range matched {
		if m == nil {
			persons[raw] = nil
			continue
		}
		persons[raw] = &matchEntry{PersonID: m.PersonID, Name: m.Name, Confidence: m.Confidence}
	}

	c.JSON(http.StatusOK, parseResponse{
		Success:        true,
		SessionInfo:    sessionInfo,
		Items:          items,
		MatchedPersons: persons,
	})
}

// handlePersonSearch serves admin-side roster lookups for the review UI.
func (s *Server) handlePersonSearch(c *gin.Context) {
	q := c.Query("q")
	persons, err := db.SearchPersons(s.DB, q, 20)
	if err != nil {
		s.logf("search persons %q: %v", q, err)
		fail(c, http.StatusInternalServerError, "person search failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "persons": persons})
}

type bulkRequest struct {
	SessionID      *int64                    `json:"session_id"`
	Documents      []reconcile.DraftDocument `json:"documents"`
	SkipDuplicates bool                      `json:"skip_duplicates"`
}

func (s *Server) handleBulkCreate(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == nil {
		fail(c, http.StatusBadRequest, "session_id is required")
		return
	}
	if len(req.Documents) == 0 {
		fail(c, http.StatusBadRequest, "documents must be a non-empty list")
		return
	}

	result, err := s.Engine.BulkCreate(*req.SessionID, req.Documents, req.SkipDuplicates, adminUser(c))
	if errors.Is(err, reconcile.ErrBatchTooLarge) {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logf("bulk create: %v", err)
		fail(c, http.StatusInternalServerError, "bulk create failed")
		return
	}
	for _, id := range result.CreatedIDs {
		if err := s.Reindexer.IndexOne(id); err != nil {
			s.logf("index document %d: %v", id, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"created":    result.Created,
		"duplicates": result.Duplicates,
		"errors":     result.Errors,
	})
}

type resolveRequest struct {
	ExistingDocumentID *int64                      `json:"existing_document_id"`
	NewDocument        *reconcile.ProposedDocument `json:"new_document"`
	Action             string                      `json:"action"`
	UpdateFields       reconcile.UpdateFields      `json:"update_fields"`
}

func (s *Server) handleResolveDuplicate(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ExistingDocumentID == nil {
		fail(c, http.StatusBadRequest, "existing_document_id is required")
		return
	}
	action := reconcile.Action(req.Action)
	if req.NewDocument == nil && action != reconcile.ActionKeepExisting {
		fail(c, http.StatusBadRequest, "new_document is required")
		return
	}

	result, err := s.Engine.Resolve(*req.ExistingDocumentID, req.NewDocument, action, req.UpdateFields, adminUser(c))
	switch {
	case errors.Is(err, reconcile.ErrDocumentNotFound):
		fail(c, http.StatusNotFound, "document not found")
		return
	case errors.Is(err, reconcile.ErrUnknownAction):
		fail(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.logf("resolve duplicate %d: %v", *req.ExistingDocumentID, err)
		fail(c, http.StatusInternalServerError, "duplicate resolution failed")
		return
	}
	if err := s.Reindexer.IndexOne(result.DocumentID); err != nil {
		s.logf("index document %d: %v", result.DocumentID, err)
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleConflicts(c *gin.Context) {
	conflicts, err := reconcile.ScanConflicts(s.DB)
	if err != nil {
		s.logf("scan conflicts: %v", err)
		fail(c, http.StatusInternalServerError, "conflict scan failed")
		return
	}
	if conflicts == nil {
		conflicts = []reconcile.Conflict{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "conflicts": conflicts})
}

func (s *Server) handleReindex(c *gin.Context) {
	n, err := s.Reindexer.Reindex(c.Request.Context())
	if err != nil {
		s.logf("reindex: %v", err)
		fail(c, http.StatusInternalServerError, "reindex failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "indexed": n})
}

// handleDocumentSearch is the one public endpoint: full-text search over
// indexed documents.
func (s *Server) handleDocumentSearch(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, "q is required")
		return
	}
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	results, err := s.Index.Search(q, limit)
	if err != nil {
		s.logf("document search %q: %v", q, err)
		fail(c, http.StatusInternalServerError, "search failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "results": results, "count": len(results)})
}

// Persona HTTP handlers.
//
//   - POST   /personas            (create; Idempotency-Key aware)
//   - GET    /personas            (list, paginated, weak ETag)
//   - GET    /personas/{id}       (fetch)
//   - DELETE /personas/{id}       (soft delete)
//   - GET    /persona-templates   (preset personas)
//
// Idempotency: when a create carries an Idempotency-Key that already
// produced a persona for this user and route, the stored persona is returned
// with `Idempotency-Replayed: true` and no new row is written.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-advisor-coach/internal/domain"
	"github.com/tbourn/go-advisor-coach/internal/http/middleware"
	"github.com/tbourn/go-advisor-coach/internal/repo"
	"github.com/tbourn/go-advisor-coach/internal/services"
)

// CreatePersonaRequest is the JSON payload for creating a persona.
type CreatePersonaRequest struct {
	Name       string     `json:"name" example:"Dana Whitfield"`
	Age        domain.Age `json:"age,omitempty" swaggertype:"string" example:"47"`
	Gender     string     `json:"gender,omitempty" example:"Female"`
	Occupation string     `json:"occupation" example:"ICU nurse"`
	Income     string     `json:"income" example:"$85,000"`
	Assets     string     `json:"assets" example:"$120,000 in savings"`
	// Risk is Conservative, Moderate or Aggressive (any case).
	Risk      string `json:"risk" example:"Moderate"`
	Lifestyle string `json:"lifestyle" example:"Works night shifts, saving for her daughter's tuition."`
	// Language defaults to English; tags such as "th" are accepted.
	Language string `json:"language,omitempty" example:"English"`
}

func (r CreatePersonaRequest) persona() domain.Persona {
	return domain.Persona{
		Name:       r.Name,
		Age:        r.Age,
		Gender:     r.Gender,
		Occupation: r.Occupation,
		Income:     r.Income,
		Assets:     r.Assets,
		Risk:       r.Risk,
		Lifestyle:  r.Lifestyle,
		Language:   r.Language,
	}
}

// ListPersonasResponse wraps a page of personas and pagination information.
type ListPersonasResponse struct {
	Personas   []domain.Persona `json:"personas"`
	Pagination Pagination       `json:"pagination"`
}

// PersonaTemplatesResponse lists the preset personas.
type PersonaTemplatesResponse struct {
	Templates []domain.Persona `json:"templates"`
}

// personaDB returns the store behind the persona service, if it has one.
func (h *Handlers) personaDB() *gorm.DB {
	if svc, ok := h.personaSvc.(*services.PersonaService); ok {
		return svc.DB
	}
	return nil
}

// CreatePersona godoc
// @ID          createPersona
// @Summary     Create a persona
// @Description Stores a practice persona for the current user. Fields are trimmed, the risk level is normalized and the language canonicalized. Supports Idempotency-Key for safe retries.
// @Tags        Personas
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"                  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"       example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.CreatePersonaRequest  true  "Persona"
//
// @Success     201  {object}  domain.Persona
// @Header      201  {string}  Idempotency-Replayed  "true when served from a previous request"
// @Failure     400  {object}  handlers.ErrorResponse  "Missing name/occupation or invalid risk"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /personas [post]
func (h *Handlers) CreatePersona(c *gin.Context) {
	ctx := c.Request.Context()
	uid := middleware.UserID(c)
	scope := middleware.IdempotencyScope(c)
	db := h.personaDB()

	idemKey, _ := middleware.GetIdempotencyKey(c)
	if idemKey != "" && db != nil {
		if rec, err := repo.GetIdempotency(ctx, db, uid, scope, idemKey, time.Now().UTC()); err == nil {
			if prev, err2 := h.personaSvc.Get(ctx, uid, rec.ResourceID); err2 == nil {
				c.Header(middleware.HeaderIdempotencyReplayed, "true")
				ok(c, rec.Status, prev)
				return
			}
		}
	}

	var req CreatePersonaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	p, err := h.personaSvc.Create(ctx, uid, req.persona())
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}

	if idemKey != "" && db != nil {
		if _, err := repo.CreateIdempotency(ctx, db, uid, scope, idemKey, p.ID, http.StatusCreated, h.IdempotencyTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record not stored")
		}
	}
	ok(c, http.StatusCreated, p)
}

// ListPersonas godoc
// @ID          listPersonas
// @Summary     List personas (paginated)
// @Description Returns a page of the user's personas, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Personas
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"       example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"personas:user123:3:1735689600\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListPersonasResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     500  {object}  handlers.ErrorResponse "Internal error"
// @Router      /personas [get]
func (h *Handlers) ListPersonas(c *gin.Context) {
	ctx := c.Request.Context()
	uid := middleware.UserID(c)
	page, pageSize := clampPagination(c)

	if db := h.personaDB(); db != nil {
		count, maxTS, err := repo.PersonasStats(ctx, db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"personas:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, total, err := h.personaSvc.ListPage(ctx, uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListPersonasResponse{
		Personas:   items,
		Pagination: newPagination(page, pageSize, total),
	})
}

// GetPersona godoc
// @ID          getPersona
// @Summary     Get a persona
// @Tags        Personas
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Persona ID (UUID)"      format(uuid)
//
// @Success     200  {object}  domain.Persona
// @Failure     400  {object}  handlers.ErrorResponse  "Bad id"
// @Failure     404  {object}  handlers.ErrorResponse  "Persona not found"
// @Router      /personas/{id} [get]
func (h *Handlers) GetPersona(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "persona id must be a UUID")
		return
	}
	p, err := h.personaSvc.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, p)
}

// DeletePersona godoc
// @ID          deletePersona
// @Summary     Delete a persona
// @Tags        Personas
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Persona ID (UUID)"      format(uuid)
//
// @Success     204  {string}  string "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad id"
// @Failure     404  {object}  handlers.ErrorResponse  "Persona not found"
// @Router      /personas/{id} [delete]
func (h *Handlers) DeletePersona(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "persona id must be a UUID")
		return
	}
	if err := h.personaSvc.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}

// ListPersonaTemplates godoc
// @ID          listPersonaTemplates
// @Summary     List preset personas
// @Description Returns the ready-made personas the UI offers as starting points.
// @Tags        Personas
// @Produce     json
// @Success     200  {object}  handlers.PersonaTemplatesResponse
// @Router      /persona-templates [get]
func (h *Handlers) ListPersonaTemplates(c *gin.Context) {
	ok(c, http.StatusOK, PersonaTemplatesResponse{Templates: h.personaSvc.Templates()})
}

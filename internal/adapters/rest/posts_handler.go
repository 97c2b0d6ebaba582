package rest

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/philly/imageblog/internal/platform/apperror"
	"github.com/philly/imageblog/internal/platform/validator"
	"github.com/philly/imageblog/internal/posts/application"
	"github.com/philly/imageblog/internal/posts/domain"
	"github.com/philly/imageblog/internal/posts/ports"
)

const (
	MessagePostAdded   = "Post added successfully!"
	MessagePostDeleted = "Post deleted successfully!"

	// TotalCountHeader carries the number of posts matching a list query
	TotalCountHeader = "X-Total-Count"

	defaultPageSize   = 10
	multipartOverhead = 1 << 20
)

var (
	errInvalidBody = apperror.Validation(apperror.BusinessCodeInvalidFormat, "invalid request body")
	errBodyTooBig  = apperror.Validation(apperror.BusinessCodeMediaTooLarge, "request body is too large")
	errInvalidList = apperror.Validation(apperror.BusinessCodeInvalidFormat, "invalid list parameters")

	errRouteNotFound = apperror.New(apperror.CodeNotFound, apperror.BusinessCodeRouteNotFound, "route not found", http.StatusNotFound)
)

// PostResponse is the JSON representation of a post
type PostResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreatePostResponse is returned by POST /api/add-post
type CreatePostResponse struct {
	Message string       `json:"message"`
	Post    PostResponse `json:"post"`
}

type updatePostRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// listQuery holds the optional paging parameters. Nil means not sent.
type listQuery struct {
	Page  *int `json:"page" validate:"omitempty,min=1"`
	Limit *int `json:"limit" validate:"omitempty,min=1,max=100"`
}

// PostsHandler handles HTTP requests for posts
type PostsHandler struct {
	*BaseHandler
	service      *application.PostsService
	maxBodyBytes int64
}

// NewPostsHandler creates a new posts handler. Request bodies are capped at
// the media limit plus room for the text fields.
func NewPostsHandler(base *BaseHandler, service *application.PostsService, maxMediaBytes MaxMediaBytes) *PostsHandler {
	return &PostsHandler{
		BaseHandler:  base,
		service:      service,
		maxBodyBytes: int64(maxMediaBytes) + multipartOverhead,
	}
}

// MaxMediaBytes is the configured upload size limit
type MaxMediaBytes int64

// CreatePost handles multipart uploads of a new post
func (h *PostsHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := r.ParseMultipartForm(h.maxBodyBytes); err != nil {
		h.HandleError(w, r, formError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	image, err := readImage(r)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	post, err := h.service.CreatePost(r.Context(), application.CreatePostParams{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Image:       image,
	})
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, CreatePostResponse{
		Message: MessagePostAdded,
		Post:    toPostResponse(post),
	}, http.StatusCreated)
}

// ListPosts returns posts in creation order. Without page or limit every
// post is returned.
func (h *PostsHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	filter := ports.ListFilter{Search: r.URL.Query().Get("search")}
	if query.Page != nil || query.Limit != nil {
		page, limit := 1, defaultPageSize
		if query.Page != nil {
			page = *query.Page
		}
		if query.Limit != nil {
			limit = *query.Limit
		}
		filter.Limit = limit
		filter.Offset = (page - 1) * limit
	}

	posts, total, err := h.service.ListPosts(r.Context(), filter)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	response := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		response = append(response, toPostResponse(post))
	}

	w.Header().Set(TotalCountHeader, strconv.Itoa(total))
	h.WriteJSONResponse(w, r, response, http.StatusOK)
}

// GetPost retrieves a single post by ID
func (h *PostsHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	post, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, toPostResponse(post), http.StatusOK)
}

// UpdatePost accepts either a multipart form (optionally with a new image)
// or a JSON body with text fields only
func (h *PostsHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var params application.UpdatePostParams
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxBodyBytes); err != nil {
			h.HandleError(w, r, formError(err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		params.Title = formField(r.MultipartForm, "title")
		params.Description = formField(r.MultipartForm, "description")

		image, err := readImage(r)
		if err != nil {
			h.HandleError(w, r, err)
			return
		}
		params.Image = image
	} else {
		var req updatePostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			h.HandleError(w, r, formError(err))
			return
		}
		params.Title = req.Title
		params.Description = req.Description
	}

	post, err := h.service.UpdatePost(r.Context(), id, params)
	if err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, toPostResponse(post), http.StatusOK)
}

// DeletePost removes a post
func (h *PostsHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.postID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeletePost(r.Context(), id); err != nil {
		h.HandleError(w, r, err)
		return
	}

	h.WriteJSONResponse(w, r, MessageResponse{Message: MessagePostDeleted}, http.StatusOK)
}

// Helper functions

// postID parses the {id} URL parameter. Anything that is not a UUID cannot
// name a post, so it is reported as not found.
func (h *PostsHandler) postID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleError(w, r, application.ErrPostNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func parseListQuery(r *http.Request) (listQuery, error) {
	var query listQuery
	details := map[string]string{}

	values := r.URL.Query()
	for name, dst := range map[string]**int{"page": &query.Page, "limit": &query.Limit} {
		raw := values.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			details[name] = name + " must be a number"
			continue
		}
		*dst = &n
	}
	if len(details) > 0 {
		return listQuery{}, errInvalidList.WithDetails(details)
	}

	fields, err := validator.Struct(query)
	if err != nil {
		return listQuery{}, errInvalidList.WithInner(err)
	}
	if fields != nil {
		return listQuery{}, errInvalidList.WithDetails(fields)
	}
	return query, nil
}

// readImage returns the uploaded "image" file, or nil when none was sent
func readImage(r *http.Request) (*ports.Upload, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, formError(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, formError(err)
	}
	return &ports.Upload{Filename: header.Filename, Data: data}, nil
}

// formField returns a pointer to the field's value, or nil when absent
func formField(form *multipart.Form, name string) *string {
	values, ok := form.Value[name]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func formError(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		return errBodyTooBig.WithInner(err)
	}
	return errInvalidBody.WithInner(err)
}

func toPostResponse(post *domain.Post) PostResponse {
	return PostResponse{
		ID:          post.ID.String(),
		Title:       post.Title,
		Description: post.Description,
		Image:       post.Image,
		CreatedAt:   post.CreatedAt,
	}
}

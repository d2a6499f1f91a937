package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"marketplace-service/internal/carousel"
	"marketplace-service/internal/model"
	"marketplace-service/internal/service"
)

const placeholderImage = "/placeholder.png"

// ListingHandler serves browsing, search, detail and creation of listings.
type ListingHandler struct {
	Svc            *service.ListingService
	MaxUploadBytes int64
	Now            func() time.Time
}

func NewListingHandler(svc *service.ListingService, maxUploadBytes int64) *ListingHandler {
	return &ListingHandler{Svc: svc, MaxUploadBytes: maxUploadBytes, Now: time.Now}
}

// RegisterRoutes registers all listing routes on rg.
func (h *ListingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/categories", h.GetCategories)
	rg.GET("/categories/:label/listings", h.GetCategoryListings)

	rg.GET("/listings", h.GetListings)
	rg.POST("/listings", h.CreateListing)
	rg.GET("/listings/:id", h.GetListingByID)
	rg.GET("/listings/:id/gallery", h.GetGallery)
}

// ListingResponse is a listing as the pages render it.
type ListingResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	DisplayPrice string    `json:"display_price"`
	Category     string    `json:"category"`
	SellerEmail  string    `json:"seller_email"`
	Images       []string  `json:"images"`
	Location     string    `json:"location"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ListedAgo    string    `json:"listed_ago"`
}

func (h *ListingHandler) toResponse(l model.Listing) ListingResponse {
	return ListingResponse{
		ID:           l.ID,
		Title:        l.Title,
		Description:  l.Description,
		Price:        l.Price,
		DisplayPrice: l.DisplayPrice(),
		Category:     l.Category,
		SellerEmail:  l.SellerEmail,
		Images:       l.Images(),
		Location:     l.Location,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
		ListedAgo:    humanize.RelTime(l.CreatedAt, h.Now(), "ago", "from now"),
	}
}

func (h *ListingHandler) toResponses(list []model.Listing) []ListingResponse {
	out := make([]ListingResponse, 0, len(list))
	for _, l := range list {
		out = append(out, h.toResponse(l))
	}
	return out
}

// CategoriesResponse feeds the navigation and the create form's select.
type CategoriesResponse struct {
	Categories []model.CatalogEntry `json:"categories"`
	Selectable []string             `json:"selectable"`
}

// GET /api/categories
func (h *ListingHandler) GetCategories(c *gin.Context) {
	catalog := h.Svc.Catalog()
	c.JSON(http.StatusOK, CategoriesResponse{
		Categories: catalog.Entries(),
		Selectable: catalog.Selectable(),
	})
}

// GET /api/listings?q=...&category=...&limit=...&offset=...
func (h *ListingHandler) GetListings(c *gin.Context) {
	h.list(c, c.Query("category"))
}

// GET /api/categories/:label/listings?q=...
func (h *ListingHandler) GetCategoryListings(c *gin.Context) {
	h.list(c, c.Param("label"))
}

func (h *ListingHandler) list(c *gin.Context, label string) {
	cat, ok := h.Svc.Catalog().Resolve(label)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	list, err := h.Svc.List(c.Request.Context(), service.ListQuery{
		Category: cat,
		Search:   c.Query("q"),
		Limit:    max(limit, 0),
		Offset:   max(offset, 0),
	})
	if err != nil {
		writeError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, h.toResponses(list))
}

// GET /api/listings/:id
func (h *ListingHandler) GetListingByID(c *gin.Context) {
	l, found, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "")
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	c.JSON(http.StatusOK, h.toResponse(*l))
}

// GalleryResponse is the carousel state after applying an action.
type GalleryResponse struct {
	Index    int    `json:"index"`
	Image    string `json:"image"`
	Count    int    `json:"count"`
	Controls bool   `json:"controls"`
}

// GET /api/listings/:id/gallery?index=...&action=next|previous|jump|swipe_left|swipe_right&to=...
func (h *ListingHandler) GetGallery(c *gin.Context) {
	l, found, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "")
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}

	car := carousel.New(l.Images())
	index, _ := strconv.Atoi(c.DefaultQuery("index", "0"))
	car.Seek(index)

	switch c.Query("action") {
	case "":
	case "next":
		car.Next()
	case "previous":
		car.Previous()
	case "swipe_left":
		car.Swipe(carousel.SwipeLeft)
	case "swipe_right":
		car.Swipe(carousel.SwipeRight)
	case "jump":
		to, err := strconv.Atoi(c.Query("to"))
		if err == nil {
			err = car.JumpTo(to)
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image index"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
		return
	}

	img := car.Current()
	if img == "" {
		img = placeholderImage
	}
	c.JSON(http.StatusOK, GalleryResponse{
		Index:    car.Index(),
		Image:    img,
		Count:    car.Len(),
		Controls: car.ShowControls(),
	})
}

// POST /api/listings (multipart/form-data, one or more "image" parts)
func (h *ListingHandler) CreateListing(c *gin.Context) {
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}
	mf, err := c.MultipartForm()
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}

	form := service.NewForm()
	form.Draft = service.Draft{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Price:       service.ParsePrice(c.PostForm("price")),
		Category:    c.PostForm("category"),
		SellerEmail: c.PostForm("seller_email"),
		Location:    c.PostForm("location"),
	}
	images := make([]service.ImageFile, 0, len(mf.File["image"]))
	for _, fh := range mf.File["image"] {
		images = append(images, service.ImageFromFileHeader(fh))
	}
	form.SetImages(images)

	listing, err := h.Svc.SubmitForm(c.Request.Context(), form)
	if err != nil {
		writeError(c, err, "Failed to create listing. Please try again.")
		return
	}
	c.JSON(http.StatusCreated, h.toResponse(*listing))
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/identity"
	domainIdentity "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/middleware"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/interfaces/http/router"
)

// UserHandler handles user management HTTP requests
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identity.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Create godoc
// @ID           createUser
// @Summary      Create a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body identity.CreateUserRequest true "User creation request"
// @Success      201 {object} APIResponse[identity.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req identity.CreateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.userService.Create(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// GetByID godoc
// @ID           getUserById
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id} [get]
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// List godoc
// @ID           listUsers
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(20)
// @Param        search query string false "Search by name or email"
// @Param        role query string false "Role"
// @Param        isActive query bool false "Active flag"
// @Success      200 {object} APIResponse[[]identity.UserResponse]
// @Security     BearerAuth
// @Router       /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var req identity.UserListRequest
	if !h.bindQuery(c, &req) {
		return
	}
	page, err := h.userService.List(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Update godoc
// @ID           updateUser
// @Summary      Update a user
// @Description  The last active administrator cannot be demoted or deactivated
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Param        request body identity.UpdateUserRequest true "Fields to change"
// @Success      200 {object} APIResponse[identity.UserResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req identity.UpdateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.userService.Update(c.Request.Context(), id, req, currentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Delete removes a user; nobody can delete themselves or the last administrator
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), id, currentUserID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UserRoutes creates the route group for user management
func UserRoutes(h *UserHandler) *router.DomainGroup {
	users := middleware.RequireResource(domainIdentity.ResourceUsers)
	g := router.NewDomainGroup("users", "/users")
	g.GET("", users, h.List)
	g.POST("", users, h.Create)
	g.GET("/:id", users, h.GetByID)
	g.PUT("/:id", users, h.Update)
	g.DELETE("/:id", middleware.RequireRole(domainIdentity.RoleAdmin), h.Delete)
	return g
}

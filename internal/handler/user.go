package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-reservation/internal/middleware"
	"github.com/iliyamo/meeting-room-reservation/internal/repository"
)

// UserHandler serves account endpoints that require a session.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler { return &UserHandler{Users: u} }

type updateUserReq struct {
	NickName *string `json:"nickName"`
	HeadPic  *string `json:"headPic"`
	Phone    *string `json:"phoneNumber"`
}

type userListItem struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	NickName  string    `json:"nickName"`
	Email     string    `json:"email"`
	HeadPic   string    `json:"headPic"`
	Phone     string    `json:"phoneNumber"`
	IsAdmin   bool      `json:"isAdmin"`
	IsFrozen  bool      `json:"isFrozen"`
	CreatedAt time.Time `json:"createTime"`
}

// Info returns the authenticated user's profile with roles and
// deduplicated permissions, read fresh from the store.
func (h *UserHandler) Info(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetWithRoles(ctx, middleware.CurrentUserID(c))
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user does not exist"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, infoPart(u))
}

// Update applies a partial profile merge for the authenticated user.
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err := h.Users.UpdateProfile(ctx, middleware.CurrentUserID(c), repository.ProfileUpdate{
		NickName: req.NickName,
		HeadPic:  req.HeadPic,
		Phone:    req.Phone,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user does not exist"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "success"})
}

// Freeze sets the frozen flag on the given user; the account is
// rejected at its next login or refresh.
func (h *UserHandler) Freeze(c echo.Context) error {
	id, err := strconv.ParseUint(c.QueryParam("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id must be a positive integer"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.FreezeByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "freeze failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "success"})
}

// List returns a filtered, paginated user listing.
func (h *UserHandler) List(c echo.Context) error {
	pageNo, pageSize, err := pagination(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, count, err := h.Users.List(ctx, repository.UserFilter{
		Username: c.QueryParam("username"),
		NickName: c.QueryParam("nickName"),
		Email:    c.QueryParam("email"),
		PageNo:   pageNo,
		PageSize: pageSize,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	list := make([]userListItem, 0, len(users))
	for _, u := range users {
		list = append(list, userListItem{
			ID: u.ID, Username: u.Username, NickName: u.NickName, Email: u.Email,
			HeadPic: u.HeadPic, Phone: u.Phone, IsAdmin: u.IsAdmin, IsFrozen: u.IsFrozen,
			CreatedAt: u.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"list": list, "count": count})
}

// pagination parses the shared pageNo/pageSize query parameters.
// Page numbers are 1-based; pageSize defaults to 10 and is capped.
func pagination(c echo.Context) (int, int, error) {
	pageNo := 1
	if s := c.QueryParam("pageNo"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return 0, 0, errors.New("pageNo must be at least 1")
		}
		pageNo = n
	}
	pageSize := 10
	if s := c.QueryParam("pageSize"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return 0, 0, errors.New("pageSize must be a positive integer")
		}
		pageSize = n
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return pageNo, pageSize, nil
}

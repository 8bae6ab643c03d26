package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/masomo-market/core"
	"github.com/trezcool/masomo-market/core/menu"
)

const (
	menuLoadedMsg  = "Menu items loaded"
	menuFailedMsg  = "Failed to load menu items"
	invalidRequest = "Invalid request"
)

type menuQuery struct {
	Path string `query:"path" validate:"omitempty,max=2048,urlpath"`
}

type menuAPI struct {
	service    MenuService
	logger     core.Logger
	validate   *validator.Validate
	translator ut.Translator
	debug      bool
}

func registerMenuAPI(group *echo.Group, deps ServerDeps) {
	api := &menuAPI{
		service:    deps.MenuSvc,
		logger:     deps.Logger,
		validate:   deps.Validate,
		translator: deps.Translator,
		debug:      deps.Conf.Debug,
	}
	group.GET("/sidebar-menu", api.get)
}

func (api *menuAPI) get(ctx echo.Context) error {
	q := menuQuery{Path: ctx.QueryParam("path")}
	if err := api.validate.Struct(q); err != nil {
		resp := failure(invalidRequest, nil, false)
		if verrs, ok := err.(validator.ValidationErrors); ok {
			resp.Errors = core.ValidationError{Fields: core.TranslateErrors(verrs, api.translator)}.FieldMap()
		}
		return ctx.JSON(http.StatusBadRequest, resp)
	}

	identity := getContextIdentity(ctx)
	tree, err := api.service.GetMenu(ctx.Request().Context(), identity, q.Path)
	if err != nil {
		// build failures are logged by the service
		if !menu.IsBuildFailure(err) {
			args := []interface{}{err}
			if identity != nil {
				args = append(args, *identity)
			}
			api.logger.Warn(fmt.Sprintf("loading menu: %v", err), args...)
		}
		return ctx.JSON(http.StatusInternalServerError, failure(menuFailedMsg, err, api.debug))
	}
	return ctx.JSON(http.StatusOK, success(tree, menuLoadedMsg))
}

package folio

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/projects"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func (a *App) handleProjectsAPI(c echo.Context) error {
	list, err := a.Projects.List(c.Request().Context())
	if err != nil {
		return err
	}
	if list == nil {
		list = []projects.Project{}
	}
	return c.JSON(http.StatusOK, projectsResponse{
		apiResponse: apiResponse{Success: true},
		Projects:    list,
	})
}

func (a *App) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		apiResponse: okResponse("API is healthy"),
		Timestamp:   a.now().UTC().Format(timestampLayout),
	})
}

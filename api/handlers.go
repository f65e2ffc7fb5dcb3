package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard/domain"
	"taskboard/storage"
)

// requestBodyMaxSize caps task payloads; anything past this is not a task.
const requestBodyMaxSize = 1 << 20

const internalErrorMessage = "internal server error"

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, logger *log.Logger) {
	e.GET("/health", health())
	e.GET("/api/tasks", listTasks(store, logger))
	e.POST("/api/tasks", createTask(store, logger))
	e.GET("/api/tasks/:id", getTask(store, logger))
	e.PUT("/api/tasks/:id", updateTask(store, logger))
	e.DELETE("/api/tasks/:id", deleteTask(store, logger))
}

func health() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
	}
}

func listTasks(store Storage, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newRequestMetrics(c.Request().Context(), logger, http.MethodGet, "/api/tasks")
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		storeStart := time.Now()
		tasks, storeErr := store.ListTasks(ctx)
		metrics.ObserveStore(time.Since(storeStart))
		if storeErr != nil {
			metrics.SetErrorStage("storage")
			c.Logger().Error(storeErr)
			err = c.JSON(http.StatusInternalServerError, errorResponse{Message: internalErrorMessage})
			return err
		}
		metrics.SetTasksReturned(len(tasks))
		if tasks == nil {
			tasks = []domain.Task{}
		}

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, tasks)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func getTask(store Storage, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newRequestMetrics(c.Request().Context(), logger, http.MethodGet, "/api/tasks/:id")
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		id, ok := parseTaskID(c.Param("id"))
		if !ok {
			metrics.SetErrorStage("invalid_id")
			err = c.JSON(http.StatusNotFound, errorResponse{Message: "task not found"})
			return err
		}

		storeStart := time.Now()
		task, storeErr := store.GetTask(ctx, id)
		metrics.ObserveStore(time.Since(storeStart))
		if storeErr != nil {
			err = respondStoreError(c, metrics, storeErr)
			return err
		}

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, task)
		metrics.ObserveEncode(time.Since(encodeStart))
		return err
	}
}

func createTask(store Storage, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newRequestMetrics(c.Request().Context(), logger, http.MethodPost, "/api/tasks")
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		var in domain.CreateTaskInput
		if decodeErr := decodeBody(c, &in); decodeErr != nil {
			metrics.SetErrorStage("decode_body")
			err = c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
			return err
		}
		if verr := in.Validate(); verr != nil {
			metrics.SetErrorStage("validation")
			err = c.JSON(http.StatusBadRequest, errorResponse{Message: verr.Message, Field: verr.Field})
			return err
		}

		storeStart := time.Now()
		task, storeErr := store.CreateTask(ctx, in)
		metrics.ObserveStore(time.Since(storeStart))
		if storeErr != nil {
			metrics.SetErrorStage("storage")
			c.Logger().Error(storeErr)
			err = c.JSON(http.StatusInternalServerError, errorResponse{Message: internalErrorMessage})
			return err
		}

		encodeStart := time.Now()
		err = c.JSON(http.StatusCreated, task)
		metrics.ObserveEncode(time.Since(encodeStart))
		return err
	}
}

func updateTask(store Storage, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newRequestMetrics(c.Request().Context(), logger, http.MethodPut, "/api/tasks/:id")
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		id, ok := parseTaskID(c.Param("id"))
		if !ok {
			metrics.SetErrorStage("invalid_id")
			err = c.JSON(http.StatusNotFound, errorResponse{Message: "task not found"})
			return err
		}

		var in domain.UpdateTaskInput
		if decodeErr := decodeBody(c, &in); decodeErr != nil {
			metrics.SetErrorStage("decode_body")
			err = c.JSON(http.StatusBadRequest, errorResponse{Message: "invalid request body"})
			return err
		}
		if verr := in.Validate(); verr != nil {
			metrics.SetErrorStage("validation")
			err = c.JSON(http.StatusBadRequest, errorResponse{Message: verr.Message, Field: verr.Field})
			return err
		}

		storeStart := time.Now()
		task, storeErr := store.UpdateTask(ctx, id, in)
		metrics.ObserveStore(time.Since(storeStart))
		if storeErr != nil {
			err = respondStoreError(c, metrics, storeErr)
			return err
		}

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, task)
		metrics.ObserveEncode(time.Since(encodeStart))
		return err
	}
}

func deleteTask(store Storage, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		metrics, ctx := newRequestMetrics(c.Request().Context(), logger, http.MethodDelete, "/api/tasks/:id")
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		id, ok := parseTaskID(c.Param("id"))
		if !ok {
			metrics.SetErrorStage("invalid_id")
			err = c.JSON(http.StatusNotFound, errorResponse{Message: "task not found"})
			return err
		}

		storeStart := time.Now()
		storeErr := store.DeleteTask(ctx, id)
		metrics.ObserveStore(time.Since(storeStart))
		if storeErr != nil {
			err = respondStoreError(c, metrics, storeErr)
			return err
		}

		err = c.NoContent(http.StatusNoContent)
		return err
	}
}

// respondStoreError maps storage outcomes to the response contract: absence is
// a 404, anything else a non-leaking 500.
func respondStoreError(c echo.Context, metrics *requestMetrics, storeErr error) error {
	if errors.Is(storeErr, storage.ErrTaskNotFound) {
		metrics.SetErrorStage("not_found")
		return c.JSON(http.StatusNotFound, errorResponse{Message: "task not found"})
	}
	metrics.SetErrorStage("storage")
	c.Logger().Error(storeErr)
	return c.JSON(http.StatusInternalServerError, errorResponse{Message: internalErrorMessage})
}

func decodeBody(c echo.Context, dst any) error {
	lr := io.LimitReader(c.Request().Body, requestBodyMaxSize)
	return sonic.ConfigStd.NewDecoder(lr).Decode(dst)
}

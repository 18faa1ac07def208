package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/lintang-b-s/rutavial/pkg/datastructure"
	"github.com/lintang-b-s/rutavial/pkg/server"
	"github.com/lintang-b-s/rutavial/pkg/util"
	"go.uber.org/zap"
)

const MsgRouteFound = "Ruta calculada correctamente"

type RouteService interface {
	ShortestRoute(ctx context.Context, origin, destination datastructure.Coordinate) (datastructure.Route, error)
}

type NavigationHandler struct {
	svc      RouteService
	metrics  *Metrics
	validate *validator.Validate
	trans    ut.Translator
	log      *zap.Logger
}

func NavigatorRouter(r *chi.Mux, svc RouteService, m *Metrics, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	handler := &NavigationHandler{
		svc:      svc,
		metrics:  m,
		validate: validate,
		trans:    trans,
		log:      log,
	}

	r.Group(func(r chi.Router) {
		r.Route("/api", func(r chi.Router) {
			r.Post("/ruta", handler.ShortestRoute)
		})
		// path used by the existing web frontend
		r.Post("/ruta", handler.ShortestRoute)
	})
}

type Coord struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

// RouteRequest. origin & destination picked by the user.
type RouteRequest struct {
	Origen  *Coord `json:"origen" validate:"required"`
	Destino *Coord `json:"destino" validate:"required"`
}

func (s *RouteRequest) Bind(r *http.Request) error {
	if s.Origen == nil || s.Destino == nil {
		return errors.New("origen and destino are required")
	}
	return nil
}

type RouteSummaryResponse struct {
	TotalDistanceMeters float64 `json:"distancia_total_m"`
	TotalTimeMinutes    float64 `json:"tiempo_total_min"`
	TotalTimeSeconds    float64 `json:"tiempo_total_seg"`
	SegmentCount        int     `json:"segmentos_totales"`
}

type SegmentResponse struct {
	Ordinal        int     `json:"segmento"`
	Street         string  `json:"calle"`
	DistanceMeters float64 `json:"distancia_metros"`
	TimeMinutes    float64 `json:"tiempo_minutos"`
}

type RouteResponse struct {
	Message  string               `json:"mensaje"`
	Summary  RouteSummaryResponse `json:"resumen"`
	Segments []SegmentResponse    `json:"segmentos"`
	Route    string               `json:"ruta"`
}

// RenderRouteResponse rounds the distance & seconds totals, the summary keeps them raw.
func RenderRouteResponse(route datastructure.Route) *RouteResponse {
	segments := make([]SegmentResponse, 0, len(route.Segments))
	for _, s := range route.Segments {
		segments = append(segments, SegmentResponse{
			Ordinal:        s.Ordinal,
			Street:         s.Street,
			DistanceMeters: s.DistanceMeters,
			TimeMinutes:    s.TimeMinutes,
		})
	}

	return &RouteResponse{
		Message: MsgRouteFound,
		Summary: RouteSummaryResponse{
			TotalDistanceMeters: util.RoundFloat(route.Summary.TotalDistanceMeters, 2),
			TotalTimeMinutes:    route.Summary.TotalTimeMinutes,
			TotalTimeSeconds:    util.RoundFloat(route.Summary.TotalTimeSeconds, 2),
			SegmentCount:        route.Summary.SegmentCount,
		},
		Segments: segments,
		Route:    datastructure.CreatePolyline(route.Geometry),
	}
}

// ShortestRoute
//
//	POST /api/ruta: fastest route between origen and destino with per street segments.
func (h *NavigationHandler) ShortestRoute(w http.ResponseWriter, r *http.Request) {
	data := &RouteRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if err := h.validate.Struct(*data); err != nil {
		vv := translateError(err, h.trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	origin := datastructure.NewCoordinate(*data.Origen.Lat, *data.Origen.Lng)
	destination := datastructure.NewCoordinate(*data.Destino.Lat, *data.Destino.Lng)

	start := time.Now()
	route, err := h.svc.ShortestRoute(r.Context(), origin, destination)
	if h.metrics != nil {
		h.metrics.ObserveRoute(time.Since(start), err)
	}
	if err != nil {
		h.log.Info("route request failed", zap.Any("origen", origin), zap.Any("destino", destination), zap.Error(err))
		render.Render(w, r, ErrFromService(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, RenderRouteResponse(route))
}

// ErrResponse. error body of the api.
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`            // user-level status message
	ErrorText     string   `json:"error,omitempty"`   // application-level error message
	Detail        string   `json:"detalle,omitempty"` // cause of an unexpected error
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		translatedErr := errors.New(e.Translate(trans))
		errs = append(errs, translatedErr)
	}
	return errs
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrNotFoundRend(err error, msg string) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Not found.",
		ErrorText:      msg,
	}
}

func ErrInternalServerErrorRend(err error, msg string) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error.",
		ErrorText:      msg,
		Detail:         err.Error(),
	}
}

// ErrFromService maps the code of a service error to the http status.
func ErrFromService(err error) render.Renderer {
	var ierr *server.Error
	if !errors.As(err, &ierr) {
		return ErrInternalServerErrorRend(err, "internal server error")
	}

	switch ierr.Code() {
	case server.ErrBadParamInput:
		return &ErrResponse{
			Err:            err,
			HTTPStatusCode: http.StatusBadRequest,
			StatusText:     "Invalid request.",
			ErrorText:      ierr.Message(),
		}
	case server.ErrNotFound, server.ErrNoRoute:
		return ErrNotFoundRend(err, ierr.Message())
	default:
		return ErrInternalServerErrorRend(err, ierr.Message())
	}
}

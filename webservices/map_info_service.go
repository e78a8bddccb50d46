package webservices

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/maptags-app/mapsforge"
	"github.com/jamesrr39/maptags-app/maptagsdal"
	"github.com/paulmach/osm"
)

func NewMapInfoService(logger *logpkg.Logger, conns []*maptagsdal.MapFileConn) *MapInfoService {
	ws := &MapInfoService{logger, conns, chi.NewRouter()}
	ws.Get("/", ws.handleGetAll)
	ws.Get("/{name}", ws.handleGetOne)

	return ws
}

type MapInfoService struct {
	logger *logpkg.Logger
	conns  []*maptagsdal.MapFileConn
	chi.Router
}

type mapFileSummaryType struct {
	Name             string     `json:"name"`
	Bounds           osm.Bounds `json:"bounds"`
	FileVersion      uint32     `json:"fileVersion"`
	NumPOITags       int        `json:"numPoiTags"`
	NumWayTags       int        `json:"numWayTags"`
	NumZoomIntervals int        `json:"numZoomIntervals"`
}

type mapFileDetailType struct {
	mapFileSummaryType
	Projection    string                   `json:"projection"`
	TileSize      uint16                   `json:"tileSize"`
	POITags       []string                 `json:"poiTags"`
	WayTags       []string                 `json:"wayTags"`
	ZoomIntervals []mapsforge.ZoomInterval `json:"zoomIntervals"`
}

func newMapFileSummaryType(conn *maptagsdal.MapFileConn) mapFileSummaryType {
	mapFile := conn.MapFile()
	return mapFileSummaryType{
		Name:             conn.Name(),
		Bounds:           mapFile.Header.Bounds,
		FileVersion:      mapFile.Header.FileVersion,
		NumPOITags:       len(mapFile.POITags),
		NumWayTags:       len(mapFile.WayTags),
		NumZoomIntervals: len(mapFile.ZoomIntervals),
	}
}

func (ws *MapInfoService) handleGetAll(w http.ResponseWriter, r *http.Request) {
	summaries := []mapFileSummaryType{}
	for _, conn := range ws.conns {
		summaries = append(summaries, newMapFileSummaryType(conn))
	}

	// make deterministic
	sort.Slice(summaries, func(a, b int) bool {
		return summaries[a].Name < summaries[b].Name
	})

	render.JSON(w, r, summaries)
}

func (ws *MapInfoService) handleGetOne(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	for _, conn := range ws.conns {
		if conn.Name() != name {
			continue
		}

		mapFile := conn.MapFile()
		render.JSON(w, r, mapFileDetailType{
			mapFileSummaryType: newMapFileSummaryType(conn),
			Projection:         mapFile.Header.Projection,
			TileSize:           mapFile.Header.TileSize,
			POITags:            mapFile.POITags,
			WayTags:            mapFile.WayTags,
			ZoomIntervals:      mapFile.ZoomIntervals,
		})
		return
	}

	errorsx.HTTPError(w, ws.logger, errorsx.Errorf("no map file called %q", name), http.StatusNotFound)
}

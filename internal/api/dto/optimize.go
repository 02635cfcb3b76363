package dto

type OptimizeRouteResponse struct {
	RouteID            int64          `json:"routeId"`
	Stops              []StopResponse `json:"stops"`
	DistanceBefore     float64        `json:"distanceBefore"`
	DistanceAfter      float64        `json:"distanceAfter"`
	DistanceSaved      float64        `json:"distanceSaved"`
	DistanceUnit       string         `json:"distanceUnit"`
	StopsExcludedCount int            `json:"stopsExcludedCount"`
}

type ValidationErrorResponse struct {
	Error              string `json:"error"`
	StopsExcludedCount int    `json:"stopsExcludedCount"`
}

type GeocodeRouteResponse struct {
	RouteID           int64   `json:"routeId"`
	ResolvedStopIDs   []int64 `json:"resolvedStopIds"`
	UnresolvedStopIDs []int64 `json:"unresolvedStopIds"`
}

package handlers

// LocationRequest is the body of POST /weather/search.
type LocationRequest struct {
	City    string `json:"city" binding:"required,location"`
	State   string `json:"state" binding:"omitempty,location"`
	Country string `json:"country" binding:"omitempty,location"`
}

type CityParams struct {
	City string `uri:"city" binding:"required,location"`
}

type ForecastQuery struct {
	Days int `form:"days,default=7" binding:"min=0"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
}

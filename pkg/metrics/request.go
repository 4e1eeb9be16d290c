package metrics

// Request-tracking label names
const (
	LabelStatus      = "status"
	LabelMechanism   = "mechanism"
	LabelStatusCode  = "statusCode"
	LabelSource      = "source"
	LabelDestination = "destination"
	LabelErrorType   = "errorType"
	LabelRoute       = "route"
)

// RequestLabelNames is the label schema of the standard request metrics
var RequestLabelNames = []string{
	LabelStatus,
	LabelMechanism,
	LabelStatusCode,
	LabelSource,
	LabelDestination,
	LabelErrorType,
	LabelRoute,
}

// RequestStatus is the outcome of a tracked request
type RequestStatus string

const (
	StatusSuccessful RequestStatus = "successful"
	StatusFailed     RequestStatus = "failed"
)

// RequestMechanism is the transport a tracked request travelled over
type RequestMechanism string

const (
	MechanismMoleculer      RequestMechanism = "moleculer"
	MechanismGRPC           RequestMechanism = "grpc"
	MechanismHTTP           RequestMechanism = "http"
	MechanismGRPCTranscoder RequestMechanism = "grpc-transcoder"
	MechanismHTTPMoleculer  RequestMechanism = "http-moleculer"
)

// RequestLabels is a typed form of the request-tracking label set.
// Zero-valued fields are treated as absent.
type RequestLabels struct {
	Status      RequestStatus
	Mechanism   RequestMechanism
	StatusCode  int
	Source      string
	Destination string
	ErrorType   string
	Route       string
}

// Labels converts the typed set into a raw label set
func (r RequestLabels) Labels() Labels {
	labels := Labels{}
	if r.Status != "" {
		labels[LabelStatus] = string(r.Status)
	}
	if r.Mechanism != "" {
		labels[LabelMechanism] = string(r.Mechanism)
	}
	if r.StatusCode != 0 {
		labels[LabelStatusCode] = r.StatusCode
	}
	if r.Source != "" {
		labels[LabelSource] = r.Source
	}
	if r.Destination != "" {
		labels[LabelDestination] = r.Destination
	}
	if r.ErrorType != "" {
		labels[LabelErrorType] = r.ErrorType
	}
	if r.Route != "" {
		labels[LabelRoute] = r.Route
	}
	return labels
}

// StatusFromError maps a request error to its RequestStatus
func StatusFromError(err error) RequestStatus {
	if err != nil {
		return StatusFailed
	}
	return StatusSuccessful
}

package registry

// Service is implemented by every component with a lifecycle: the mirror
// engine, the page shell, the geolocation lookup and the summary publisher.
type Service interface {
	Start() error
	Stop() error
}

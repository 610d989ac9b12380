package constants

// Vehicle statuses as sent by the fleet server
const (
	// VehicleStatusAvailable indicates the vehicle can take a ride
	VehicleStatusAvailable = "available"
	// VehicleStatusBusy indicates the vehicle is carrying a passenger
	VehicleStatusBusy = "busy"
	// VehicleStatusOffline indicates the vehicle is not in service
	VehicleStatusOffline = "offline"
)

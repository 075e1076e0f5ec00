package core

import "sync/atomic"

// VehicleType is the category of a vehicle
type VehicleType string

const (
	Car  VehicleType = "car"
	Bus  VehicleType = "bus"
	Bike VehicleType = "bike"
)

// VehicleTypes lists every known category
var VehicleTypes = []VehicleType{Car, Bus, Bike}

// Valid reports whether t is a known category
func (t VehicleType) Valid() bool {
	switch t {
	case Car, Bus, Bike:
		return true
	}
	return false
}

// IDGenerator hands out vehicle IDs for one simulation run.
// The first ID is 1; IDs are never reused.
type IDGenerator struct {
	last atomic.Uint64
}

// NewIDGenerator creates a generator starting at 1
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// Next returns the next ID
func (g *IDGenerator) Next() uint64 {
	return g.last.Add(1)
}

// Issued returns how many IDs have been handed out
func (g *IDGenerator) Issued() uint64 {
	return g.last.Load()
}

// Vehicle is a single vehicle moving through the approach. Service
// timestamps are nil until the road server sets them.
type Vehicle struct {
	ID               uint64      `json:"id"`
	Type             VehicleType `json:"type"`
	ArrivalTime      float64     `json:"arrival_time"`
	StartServiceTime *float64    `json:"start_service_time,omitempty"`
	DepartureTime    *float64    `json:"departure_time,omitempty"`
}

// NewVehicle creates a vehicle that arrived at the given time
func NewVehicle(ids *IDGenerator, arrivalTime float64, vehicleType VehicleType) *Vehicle {
	return &Vehicle{
		ID:          ids.Next(),
		Type:        vehicleType,
		ArrivalTime: arrivalTime,
	}
}

// WaitTime returns the time spent queueing, if service has started
func (v *Vehicle) WaitTime() (float64, bool) {
	if v.StartServiceTime == nil {
		return 0, false
	}
	return *v.StartServiceTime - v.ArrivalTime, true
}

// ServiceTime returns the time spent in service, if the vehicle departed
func (v *Vehicle) ServiceTime() (float64, bool) {
	if v.StartServiceTime == nil || v.DepartureTime == nil {
		return 0, false
	}
	return *v.DepartureTime - *v.StartServiceTime, true
}

// Departed reports whether service completed
func (v *Vehicle) Departed() bool {
	return v.DepartureTime != nil
}

func (v *Vehicle) startService(now float64) {
	t := now
	v.StartServiceTime = &t
}

func (v *Vehicle) depart(now float64) {
	t := now
	v.DepartureTime = &t
}

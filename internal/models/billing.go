package models

import (
	"time"
)

// CustomerStatus represents the provisioning state of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusIsolated CustomerStatus = "isolated"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// Package represents a subscription plan sold to customers
type Package struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	Price       int64     `gorm:"column:price;not null;default:0" json:"price"` // monthly price in rupiah
	RateLimit   string    `gorm:"column:rate_limit;size:50" json:"rate_limit"`  // Mikrotik rate-limit, e.g. "10M/20M"
	Description string    `gorm:"column:description;size:255" json:"description"`
	IsActive    bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Package) TableName() string {
	return "packages"
}

// Customer represents a PPPoE subscriber
type Customer struct {
	ID        uint     `gorm:"column:id;primaryKey" json:"id"`
	Name      string   `gorm:"column:name;size:100;not null" json:"name"`
	Phone     string   `gorm:"column:phone;size:30;index" json:"phone"`
	Address   string   `gorm:"column:address;size:255" json:"address"`
	PackageID *uint    `gorm:"column:package_id;index" json:"package_id"`
	Package   *Package `gorm:"foreignKey:PackageID" json:"package,omitempty"`
	ODPID     *uint    `gorm:"column:odp_id;index" json:"odp_id"`
	ODP       *ODP     `gorm:"foreignKey:ODPID" json:"odp,omitempty"`

	// PPPoE credentials pushed to the router
	PPPoEUsername string `gorm:"column:pppoe_username;size:100;index" json:"pppoe_username"`
	PPPoEPassword string `gorm:"column:pppoe_password;size:100" json:"pppoe_password"`

	Status    CustomerStatus `gorm:"column:status;size:20;default:active;index" json:"status"`
	Latitude  float64        `gorm:"column:latitude;default:0" json:"latitude"`
	Longitude float64        `gorm:"column:longitude;default:0" json:"longitude"`
	DueDay    int            `gorm:"column:due_day;default:1" json:"due_day"` // billing day of month

	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// ODP represents an optical distribution point on the FTTH network
type ODP struct {
	ID           uint        `gorm:"column:id;primaryKey" json:"id"`
	Name         string      `gorm:"column:name;size:100;not null" json:"name"`
	Code         string      `gorm:"column:code;size:50;index" json:"code"`
	Capacity     int         `gorm:"column:capacity;default:8" json:"capacity"`
	UsedPorts    int         `gorm:"column:used_ports;default:0" json:"used_ports"`
	Latitude     float64     `gorm:"column:latitude;default:0" json:"latitude"`
	Longitude    float64     `gorm:"column:longitude;default:0" json:"longitude"`
	CableRouteID *uint       `gorm:"column:cable_route_id;index" json:"cable_route_id"`
	CableRoute   *CableRoute `gorm:"foreignKey:CableRouteID" json:"cable_route,omitempty"`
	CreatedAt    time.Time   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"column:updated_at" json:"updated_at"`
}

func (ODP) TableName() string {
	return "odps"
}

// CableRoute represents a fiber run drawn on the coverage map
type CableRoute struct {
	ID           uint      `gorm:"column:id;primaryKey" json:"id"`
	Name         string    `gorm:"column:name;size:100;not null" json:"name"`
	PathPoints   string    `gorm:"column:path_points;type:text" json:"path_points"` // JSON array of [lat,lng] pairs
	LengthMeters float64   `gorm:"column:length_meters;default:0" json:"length_meters"`
	Color        string    `gorm:"column:color;size:20" json:"color"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (CableRoute) TableName() string {
	return "cable_routes"
}

// NetworkSegment represents a routed subnet served by one router
type NetworkSegment struct {
	ID         uint      `gorm:"column:id;primaryKey" json:"id"`
	Name       string    `gorm:"column:name;size:100;not null" json:"name"`
	Subnet     string    `gorm:"column:subnet;size:50" json:"subnet"` // CIDR, e.g. "10.10.1.0/24"
	VlanID     int       `gorm:"column:vlan_id;default:0" json:"vlan_id"`
	RouterHost string    `gorm:"column:router_host;size:100" json:"router_host"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (NetworkSegment) TableName() string {
	return "network_segments"
}

// Package seed holds the built-in records written on first run, when the
// store has never been initialized and no remote pull produced data.
package seed

import "github.com/vcpc/helpdesk/internal/model"

// Users returns the default accounts. The admin password is the stock
// default shipped by the source system; deployments are expected to
// change it through user management.
func Users() []model.User {
	return []model.User{
		{ID: "u1", Username: "admin", Password: "123", FullName: "Quản Trị Viên", Role: model.RoleAdmin, Department: "IT", Subsidiary: "VCHC"},
		{ID: "u2", Username: "john", Password: "123", FullName: "John Doe", Role: model.RoleUser, Department: "Marketing", Subsidiary: "VCHQ"},
		{ID: "u3", Username: "jane", Password: "123", FullName: "Jane Smith", Role: model.RoleUser, Department: "Warehouse", Subsidiary: "VCHD"},
	}
}

// Assets returns the default asset inventory.
func Assets() []model.Asset {
	return []model.Asset{
		{
			ID:             "AST-001",
			Name:           `MacBook Pro 14" M3`,
			Type:           "Laptop",
			SerialNumber:   "MBP14M3-X992",
			Status:         model.AssetInUse,
			AssignedToID:   "u2",
			AssignedToName: "John Doe",
			PurchaseDate:   "2024-01-15",
			Value:          45000000,
		},
		{
			ID:           "AST-002",
			Name:         `Dell UltraSharp 27"`,
			Type:         "Monitor",
			SerialNumber: "DELL-U27-9001",
			Status:       model.AssetInStock,
			PurchaseDate: "2023-11-20",
			Value:        12000000,
		},
		{
			ID:           "AST-003",
			Name:         "Cisco Router C9200",
			Type:         "Network Device",
			SerialNumber: "CS-C9200-881",
			Status:       model.AssetRepairing,
			PurchaseDate: "2022-05-10",
			Value:        25000000,
		},
	}
}

// Tickets returns the default sample tickets.
func Tickets() []model.Ticket {
	return []model.Ticket{
		{
			ID:          "T-1001",
			Title:       "Lỗi kết nối máy in",
			Description: "Máy in HP tầng 3 không phản hồi qua mạng.",
			Status:      model.TicketOpen,
			Priority:    model.PriorityMedium,
			Category:    "Hardware",
			CreatorID:   "u2",
			CreatorName: "John Doe",
			Department:  "Marketing",
			Subsidiary:  "VCHC",
			CreatedAt:   "2024-03-20T10:00:00Z",
			UpdatedAt:   "2024-03-20T10:00:00Z",
			Location:    "Floor 3",
		},
	}
}

// Reference lists used by forms and validation on the UI side.
var (
	Subsidiaries = []string{"VCHC", "VCHQ", "VCHD", "VCLT"}
	Departments  = []string{"Marketing", "IT", "HR", "Sales", "Production", "Warehouse", "Artwork", "Planning"}
	Categories   = []string{"Hardware", "Software", "Network", "Security", "Setup", "Account"}
	AssetTypes   = []string{"Laptop", "Desktop", "Monitor", "Server", "Printer", "Mobile", "Network Device"}
)

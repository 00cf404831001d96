package dto

// DashboardKPIs indicadores del período.
type DashboardKPIs struct {
	TotalValue       string `json:"total_value"`
	TransactionCount int    `json:"transaction_count"`
	ContractCount    int    `json:"contract_count"`
	AvgValuePerTx    string `json:"avg_value_per_transaction"`
}

// DashboardPoint punto de la serie diaria.
type DashboardPoint struct {
	Date             string `json:"date"`
	Value            string `json:"value"`
	TransactionCount int    `json:"transaction_count"`
}

// DashboardTypeTotal total por tipo.
type DashboardTypeTotal struct {
	Type             string `json:"type"`
	Value            string `json:"value"`
	TransactionCount int    `json:"transaction_count"`
}

// DashboardShipment embarque del top.
type DashboardShipment struct {
	ShipmentID string `json:"shipment_id"`
	Value      string `json:"value"`
}

// DashboardResponse respuesta de GET /api/analytics/dashboard.
type DashboardResponse struct {
	Days         int                  `json:"days"`
	From         string               `json:"from"`
	To           string               `json:"to"`
	KPIs         DashboardKPIs        `json:"kpis"`
	TimeSeries   []DashboardPoint     `json:"time_series"`
	ByType       []DashboardTypeTotal `json:"by_type"`
	TopShipments []DashboardShipment  `json:"top_shipments"`
}

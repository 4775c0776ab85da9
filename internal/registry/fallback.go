package registry

// Fallback returns the built-in major-accounts list. These names carry
// proper casing and always win over backup-derived names when merged.
// Aliases cover the abbreviations that show up in dictated logs.
func Fallback() []Account {
	return []Account{
		{Name: "Government of Saskatchewan", Aliases: []string{"Gov of SK", "Gov of Sask", "GoS"}},
		{Name: "Nutrien Ltd", Aliases: []string{"Nutrien"}},
		{Name: "SaskTel"},
		{Name: "Federated Co-operatives", Aliases: []string{"FCL", "Co-op"}},
		{Name: "SGI Canada", Aliases: []string{"SGI"}},
		{Name: "The Mosaic Company", Aliases: []string{"Mosaic"}},
		{Name: "SIGA"},
		{Name: "Brandt Group", Aliases: []string{"Brandt"}},
		{Name: "SaskEnergy"},
		{Name: "Cameco Corporation", Aliases: []string{"Cameco"}},
		{Name: "Conexus Credit Union", Aliases: []string{"Conexus"}},
		{Name: "Affinity Credit Union", Aliases: []string{"Affinity"}},
		{Name: "Viterra"},
		{Name: "Saskatchewan WCB", Aliases: []string{"WCB"}},
		{Name: "City of Saskatoon"},
		{Name: "City of Regina"},
		{Name: "Saskatchewan Health Authority", Aliases: []string{"SHA"}},
		{Name: "eHealth Saskatchewan", Aliases: []string{"eHealth"}},
		{Name: "SaskPower"},
		{Name: "Bunge Canada", Aliases: []string{"Bunge"}},
		{Name: "K+S Potash Canada", Aliases: []string{"K+S"}},
		{Name: "Regina General Hospital"},
		{Name: "St Paul's Hospital"},
		{Name: "Saskatchewan Gaming Corporation"},
		{Name: "Farm Credit Canada", Aliases: []string{"FCC"}},
		{Name: "Vecima Networks", Aliases: []string{"Vecima"}},
		{Name: "Bourgault Industries", Aliases: []string{"Bourgault"}},
		{Name: "CGI"},
		{Name: "Prince Albert Grand Council", Aliases: []string{"PAGC"}},
		{Name: "Potash Corp of SK", Aliases: []string{"PotashCorp"}},
		{Name: "GSCS"},
		{Name: "SLGA"},
		{Name: "Pharma Choice Canada", Aliases: []string{"PharmaChoice"}},
		{Name: "Maple Leaf Consumer Foods", Aliases: []string{"Maple Leaf"}},
		{Name: "Trans Gas Ltd", Aliases: []string{"TransGas"}},
		{Name: "Sun Country Regional Health"},
		{Name: "Five Hills Health Region"},
		{Name: "Kelsey Trail Health Region"},
		{Name: "Ranch Ehrlo Society", Aliases: []string{"Ranch Ehrlo"}},
		{Name: "Northern Lights Casino"},
		{Name: "Gold Eagle Casino"},
		{Name: "Painted Hand Casino"},
		{Name: "Canadian Pacific Railway", Aliases: []string{"CP Rail", "CPR"}},
	}
}

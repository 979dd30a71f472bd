package core

// DeviceTypes maps the fixed device-type ids the downstream warranty API
// accepts to their display names. Keyword entries reference these ids.
var DeviceTypes = map[int]string{
	1:  "Celulares y Tablets",
	2:  "Monitores",
	3:  "Cocinas",
	4:  "Refrigeradoras",
	6:  "Licuadoras",
	7:  "Desconocido",
	8:  "Audífonos",
	9:  "Relojes",
	10: "Cable USB",
	11: "Cubo",
	13: "Proyector",
	15: "Parlante",
	16: "Mouse",
	17: "Scooter",
	18: "Robot de Limpieza",
	19: "Pantallas",
	20: "Impresora",
	21: "Laptop",
	23: "Cámaras de seguridad",
	24: "Router",
	25: "Drones",
	26: "Baterías",
	27: "Gaming",
	28: "Teclado",
	29: "Estuches",
	32: "Audio/video",
	33: "Internet Satelital",
	34: "Tarjeta de memoria externa",
	36: "No encontrado",
}

// DeviceTypeName returns the display name for a device-type id.
func DeviceTypeName(id int) string {
	if name, ok := DeviceTypes[id]; ok {
		return name
	}
	return DeviceTypes[DeviceTypeUnknown]
}

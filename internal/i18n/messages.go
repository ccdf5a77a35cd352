package i18n

var messages = map[Lang]map[string]string{
	ES: {
		"nav.home":      "Inicio",
		"nav.divisions": "Divisiones",
		"nav.about":     "Nosotros",
		"nav.contact":   "Contacto",
		"nav.switch":    "English",

		"home.title":     "Soluciones industriales para cada eslabón",
		"home.subtitle":  "Acuicultura, agricultura, empaque y logística bajo un mismo proveedor.",
		"home.divisions": "Nuestras divisiones",
		"home.cta":       "Ver productos",

		"division.products": "Productos",
		"product.gallery":   "Galería",
		"product.back":      "Volver a %s",
		"product.quote":     "Solicitar cotización",

		"carousel.prev":     "Anterior",
		"carousel.next":     "Siguiente",
		"carousel.position": "%d de %d",
		"carousel.open":     "Ampliar",
		"carousel.close":    "Cerrar",
		"image.loading":     "Cargando imagen…",
		"image.pending":     "Imagen no disponible",

		"about.title":   "Sobre nosotros",
		"about.gallery": "Instalaciones",

		"contact.title":    "Contacto",
		"contact.intro":    "Escríbenos y un asesor te responderá en menos de 24 horas.",
		"contact.whatsapp": "Escribir por WhatsApp",
		"contact.email":    "Enviar correo",
		"contact.gmail":    "Redactar en Gmail",
		"contact.outlook":  "Redactar en Outlook",
		"contact.message":  "Hola, me interesa información sobre %s.",
		"contact.subject":  "Consulta: %s",
		"contact.general":  "sus productos",

		"error.notfound": "Página no encontrada",
		"error.internal": "Ocurrió un error inesperado",
		"footer.rights":  "Todos los derechos reservados.",
	},
	EN: {
		"nav.home":      "Home",
		"nav.divisions": "Divisions",
		"nav.about":     "About us",
		"nav.contact":   "Contact",
		"nav.switch":    "Español",

		"home.title":     "Industrial solutions for every link of the chain",
		"home.subtitle":  "Aquaculture, agriculture, packaging and logistics from a single supplier.",
		"home.divisions": "Our divisions",
		"home.cta":       "See products",

		"division.products": "Products",
		"product.gallery":   "Gallery",
		"product.back":      "Back to %s",
		"product.quote":     "Request a quote",

		"carousel.prev":     "Previous",
		"carousel.next":     "Next",
		"carousel.position": "%d of %d",
		"carousel.open":     "Enlarge",
		"carousel.close":    "Close",
		"image.loading":     "Loading image…",
		"image.pending":     "Image not available",

		"about.title":   "About us",
		"about.gallery": "Facilities",

		"contact.title":    "Contact",
		"contact.intro":    "Write to us and an advisor will reply within 24 hours.",
		"contact.whatsapp": "Message us on WhatsApp",
		"contact.email":    "Send an email",
		"contact.gmail":    "Compose in Gmail",
		"contact.outlook":  "Compose in Outlook",
		"contact.message":  "Hello, I would like information about %s.",
		"contact.subject":  "Inquiry: %s",
		"contact.general":  "your products",

		"error.notfound": "Page not found",
		"error.internal": "Something went wrong",
		"footer.rights":  "All rights reserved.",
	},
}

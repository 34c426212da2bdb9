package i18n

var catalog = map[string]map[string]string{
	"en": {
		"required":            "Required",
		"must_be_positive":    "Must be positive",
		"must_not_negative":   "Must not be negative",
		"out_of_range":        "Out of range",
		"invalid_choice":      "Invalid choice",
		"invalid_email":       "Invalid email address",
		"invalid_json":        "Invalid request body",
		"invalid_quantity":    "Invalid quantity",
		"invalid_rate":        "Invalid rate",
		"invalid_form":        "Invalid form",
		"invalid_id":          "Invalid identifier",
		"invalid_transition":  "This status change is not allowed",
		"not_editable":        "Only drafts can be edited",
		"not_found":           "Not found",
		"unauthorized":        "You must be signed in",
		"invalid_credentials": "Invalid email or password",
		"email_taken":         "This email is already registered",
		"no_plan":             "No active plan",
		"not_entitled":        "Your plan does not include this feature",
		"internal_error":      "Something went wrong",
		"no_match":            "Command not recognized",
		"voice_fallback":      "Sorry, I didn't catch that. Try \"open invoices\".",
		"upload_failed":       "Upload failed",
		"file_too_large":      "File is too large",
		"validation_failed":   "Some fields are invalid",
		"invalid_date":        "Invalid date",
		"too_short":           "Too short",
		"invalid_amount":      "Invalid amount",
		"invalid_kind":        "Unknown document type",
		"invalid_status":      "Unknown status",
		"unknown_client":      "Unknown client",
		"not_convertible":     "Only accepted estimates can be converted",
		"empty_upload":        "The file is empty",

		"pdf.invoice":     "Invoice",
		"pdf.estimate":    "Estimate",
		"pdf.work_order":  "Work order",
		"pdf.number":      "Number",
		"pdf.issue_date":  "Date",
		"pdf.due_date":    "Due date",
		"pdf.bill_to":     "Bill to",
		"pdf.type":        "Type",
		"pdf.description": "Description",
		"pdf.quantity":    "Qty",
		"pdf.rate":        "Rate",
		"pdf.amount":      "Amount",
		"pdf.subtotal":    "Subtotal",
		"pdf.discount":    "Discount",
		"pdf.tax":         "Tax",
		"pdf.total":       "Total",
		"pdf.notes":       "Notes",
	},
	"fr": {
		"required":            "Requis",
		"must_be_positive":    "Doit être positif",
		"must_not_negative":   "Ne doit pas être négatif",
		"out_of_range":        "Hors limites",
		"invalid_choice":      "Choix invalide",
		"invalid_email":       "Adresse e-mail invalide",
		"invalid_json":        "Corps de requête invalide",
		"invalid_quantity":    "Quantité invalide",
		"invalid_rate":        "Tarif invalide",
		"invalid_form":        "Formulaire invalide",
		"invalid_id":          "Identifiant invalide",
		"invalid_transition":  "Ce changement de statut n'est pas autorisé",
		"not_editable":        "Seuls les brouillons sont modifiables",
		"not_found":           "Introuvable",
		"unauthorized":        "Vous devez être connecté",
		"invalid_credentials": "E-mail ou mot de passe invalide",
		"email_taken":         "Cet e-mail est déjà utilisé",
		"no_plan":             "Aucun abonnement actif",
		"not_entitled":        "Votre abonnement n'inclut pas cette fonctionnalité",
		"internal_error":      "Une erreur est survenue",
		"no_match":            "Commande non reconnue",
		"voice_fallback":      "Désolé, je n'ai pas compris. Essayez « ouvrir les factures ».",
		"upload_failed":       "Échec de l'envoi",
		"file_too_large":      "Fichier trop volumineux",
		"validation_failed":   "Certains champs sont invalides",
		"invalid_date":        "Date invalide",
		"too_short":           "Trop court",
		"invalid_amount":      "Montant invalide",
		"invalid_kind":        "Type de document inconnu",
		"invalid_status":      "Statut inconnu",
		"unknown_client":      "Client inconnu",
		"not_convertible":     "Seuls les devis acceptés peuvent être convertis",
		"empty_upload":        "Le fichier est vide",

		"pdf.invoice":     "Facture",
		"pdf.estimate":    "Devis",
		"pdf.work_order":  "Bon de travail",
		"pdf.number":      "Numéro",
		"pdf.issue_date":  "Date",
		"pdf.due_date":    "Échéance",
		"pdf.bill_to":     "Facturé à",
		"pdf.type":        "Type",
		"pdf.description": "Désignation",
		"pdf.quantity":    "Qté",
		"pdf.rate":        "Prix unitaire",
		"pdf.amount":      "Montant",
		"pdf.subtotal":    "Sous-total",
		"pdf.discount":    "Remise",
		"pdf.tax":         "TVA",
		"pdf.total":       "Total",
		"pdf.notes":       "Notes",
	},
	"es": {
		"required":            "Obligatorio",
		"must_be_positive":    "Debe ser positivo",
		"must_not_negative":   "No debe ser negativo",
		"out_of_range":        "Fuera de rango",
		"invalid_choice":      "Opción no válida",
		"invalid_email":       "Correo electrónico no válido",
		"invalid_json":        "Cuerpo de la solicitud no válido",
		"invalid_quantity":    "Cantidad no válida",
		"invalid_rate":        "Tarifa no válida",
		"invalid_transition":  "Este cambio de estado no está permitido",
		"not_editable":        "Solo se pueden editar borradores",
		"not_found":           "No encontrado",
		"unauthorized":        "Debes iniciar sesión",
		"invalid_credentials": "Correo o contraseña no válidos",
		"no_plan":             "Sin plan activo",
		"not_entitled":        "Tu plan no incluye esta función",
		"internal_error":      "Algo salió mal",
		"no_match":            "Comando no reconocido",
		"voice_fallback":      "Lo siento, no te entendí. Prueba \"abrir facturas\".",
		"validation_failed":   "Algunos campos no son válidos",
		"invalid_amount":      "Importe no válido",
		"not_convertible":     "Solo se pueden convertir presupuestos aceptados",

		"pdf.invoice":     "Factura",
		"pdf.estimate":    "Presupuesto",
		"pdf.work_order":  "Orden de trabajo",
		"pdf.number":      "Número",
		"pdf.issue_date":  "Fecha",
		"pdf.due_date":    "Vencimiento",
		"pdf.bill_to":     "Facturar a",
		"pdf.description": "Descripción",
		"pdf.quantity":    "Cant.",
		"pdf.rate":        "Tarifa",
		"pdf.amount":      "Importe",
		"pdf.subtotal":    "Subtotal",
		"pdf.discount":    "Descuento",
		"pdf.tax":         "Impuesto",
		"pdf.total":       "Total",
	},
}

package setting

// Group names
const (
	GroupGeneral       = "general"
	GroupContact       = "contact"
	GroupSocial        = "social"
	GroupShipping      = "shipping"
	GroupPayment       = "payment"
	GroupSEO           = "seo"
	GroupTracking      = "tracking"
	GroupBoutique      = "boutique"
	GroupNotifications = "notifications"
	GroupDevises       = "devises"
	GroupLegal         = "legal"
	GroupEmails        = "emails"
	GroupTheme         = "theme"
)

// Groups lists every setting group in display order
var Groups = []string{
	GroupGeneral, GroupContact, GroupSocial, GroupShipping, GroupPayment,
	GroupSEO, GroupTracking, GroupBoutique, GroupNotifications, GroupDevises,
	GroupLegal, GroupEmails, GroupTheme,
}

// publicGroups can be read without authentication
var publicGroups = map[string]bool{
	GroupGeneral: true,
	GroupContact: true,
	GroupSocial:  true,
	GroupTheme:   true,
}

func background(kind, color, image string, overlay int, title, body, active string) map[string]any {
	return map[string]any{
		"type":                  kind,
		"color":                 color,
		"image":                 image,
		"overlayOpacity":        overlay,
		"overlayColor":          "#000000",
		"overlayEnabled":        overlay > 0,
		"cardEnabled":           false,
		"cardColor":             "#FFFFFF",
		"cardOpacity":           80,
		"cardBlur":              true,
		"titleColor":            title,
		"bodyColor":             body,
		"paginationColor":       "#6B7280",
		"paginationActiveColor": "#FFFFFF",
		"paginationActiveBg":    active,
	}
}

func darkSection(color string) map[string]any {
	return background("color", color, "", 0, "#FFFFFF", "#FFFFFFCC", "#5D3A1A")
}

func lightSection(color string) map[string]any {
	return background("color", color, "", 0, "#5D3A1A", "#A0826D", "#5D3A1A")
}

// defaults builds a fresh copy of the default values of every group
func defaults() map[string]map[string]any {
	return map[string]map[string]any{
		GroupGeneral: {
			"siteName":        "LE TATCHE BOIS",
			"siteNameAr":      "التاتش بوا",
			"tagline":         "Artisanat du bois marocain",
			"taglineAr":       "حرفة الخشب المغربية",
			"description":     "Artisan menuisier marocain - Fabrication sur mesure",
			"descriptionAr":   "حرفي نجارة مغربي - تصنيع حسب الطلب",
			"logoHeader":      "/images/logo.png",
			"logoFooter":      "/images/logo-light.png",
			"favicon":         "/favicon.ico",
			"businessHours":   "Lun-Sam: 9h-18h",
			"yearFounded":     "2020",
			"defaultLocale":   "fr",
			"defaultCurrency": "MAD",
		},
		GroupContact: {
			"phone":         "+212 5XX-XXXXXX",
			"whatsapp":      "+212 6XX-XXXXXX",
			"email":         "contact@letatche-bois.ma",
			"address":       "Casablanca, Maroc",
			"addressAr":     "الدار البيضاء، المغرب",
			"city":          "Casablanca",
			"country":       "Morocco",
			"postalCode":    "20000",
			"latitude":      33.5731,
			"longitude":     -7.5898,
			"hoursWeekdays": "08:00 - 18:00",
			"hoursSaturday": "09:00 - 14:00",
			"hoursSunday":   "Fermé",
			"hoursSundayAr": "مغلق",
			"googleMapsUrl": "",
		},
		GroupSocial: {
			"facebook":  "",
			"instagram": "",
			"youtube":   "",
			"twitter":   "",
			"linkedin":  "",
			"pinterest": "",
			"tiktok":    "",
		},
		GroupShipping: {
			"enabled":               true,
			"freeShippingEnabled":   true,
			"defaultFreeThreshold":  1000,
			"internationalShipping": false,
		},
		GroupPayment: {
			"stripeEnabled":  true,
			"codEnabled":     true,
			"codFee":         0,
			"minOrderAmount": 100,
			"maxCodAmount":   5000,
		},
		GroupSEO: {
			"defaultMetaTitle":       "LE TATCHE BOIS - Artisanat du bois marocain",
			"defaultMetaDescription": "Découvrez notre collection de meubles et objets en bois faits à la main au Maroc.",
			"googleSiteVerification": "",
			"bingSiteVerification":   "",
			"yandexVerification":     "",
			"defaultOgImage":         "/images/og-image.jpg",
			"twitterCardType":        "summary_large_image",
			"sitemapLastGenerated":   nil,
			"robotsTxt":              "User-agent: *\nAllow: /\nDisallow: /admin/\nDisallow: /api/\nDisallow: /checkout/\nDisallow: /panier/",
		},
		GroupTracking: {
			"googleAnalyticsId":       "",
			"googleAnalyticsEnabled":  false,
			"googleTagManagerId":      "",
			"googleTagManagerEnabled": false,
			"facebookPixelId":         "",
			"facebookPixelEnabled":    false,
			"facebookTestEvents":      false,
			"tiktokPixelId":           "",
			"tiktokPixelEnabled":      false,
			"pinterestTagId":          "",
			"pinterestTagEnabled":     false,
		},
		GroupBoutique: {
			"productsPerPage":        12,
			"defaultSort":            "newest",
			"showOutOfStock":         true,
			"showProductSku":         false,
			"taxRate":                20,
			"showPricesWithTax":      true,
			"currencyPosition":       "after",
			"enableReviews":          true,
			"reviewsRequireApproval": true,
			"minRatingToDisplay":     1,
			"lowStockThreshold":      5,
			"showStockQuantity":      false,
			"allowBackorders":        false,
		},
		GroupNotifications: {
			"emailEnabled":          true,
			"notifyNewOrder":        true,
			"notifyNewQuote":        true,
			"notifyNewMessage":      true,
			"notifyLowStock":        true,
			"adminEmails":           "",
			"sendOrderConfirmation": true,
			"sendOrderShipped":      true,
			"sendQuoteConfirmation": true,
			"whatsappEnabled":       false,
			"whatsappNumber":        "",
			"whatsappOrderAlerts":   false,
		},
		GroupDevises: {
			"defaultCurrency":      "MAD",
			"showCurrencySwitcher": true,
			"autoDetectByLocation": false,
		},
		GroupLegal: {
			"companyLegalName":       "LE TATCHE BOIS SARL",
			"ice":                    "",
			"taxId":                  "",
			"rc":                     "",
			"patente":                "",
			"rib":                    "",
			"legalAddress":           "",
			"returnPolicyDays":       14,
			"warrantyDays":           365,
			"cookieConsentMessage":   "Ce site utilise des cookies pour améliorer votre expérience.",
			"cookieConsentMessageAr": "يستخدم هذا الموقع ملفات تعريف الارتباط لتحسين تجربتك.",
		},
		GroupEmails: {
			"adminEmail":                     "admin@letatche-bois.ma",
			"fromEmail":                      "noreply@letatche-bois.ma",
			"fromName":                       "Le Tatche Bois",
			"orderConfirmationEnabled":       true,
			"orderStatusUpdateEnabled":       true,
			"quoteNotificationEnabled":       true,
			"contactFormNotificationEnabled": true,
		},
		GroupTheme: {
			"woodTexture":            "",
			"footerEnabled":          true,
			"footerOpacity":          60,
			"statsBackground":        background("color", "#8B4513", "", 65, "#FFFFFF", "#CCCCCC", "#5D3A1A"),
			"testimonialsBackground": lightSection("#FDF6EC"),
			"ctaBackground":          background("image", "#5D3A1A", "/images/cta/workshop-bg.jpg", 60, "#FFFFFF", "#FFFFFFCC", "#5D3A1A"),
			"aboutBackground":        lightSection("#FFFFFF"),
			"aboutImage":             "",
			"aboutTextCard":          true,
			"aboutTextCardOpacity":   85,
			"servicesHero":           darkSection("#5D3A1A"),
			"servicesGrid":           lightSection("#FDF6EC"),
			"servicesCta":            darkSection("#3B1E0A"),
			"realisationsHero":       darkSection("#5D3A1A"),
			"realisationsGrid":       lightSection("#FFFFFF"),
			"realisationsDetail":     lightSection("#F9FAFB"),
			"realisationsCta":        lightSection("#FDF6EC"),
			"atelierStats":           darkSection("#5D3A1A"),
			"atelierStory":           lightSection("#FFFFFF"),
			"atelierGallery":         lightSection("#F9FAFB"),
			"atelierProcess":         lightSection("#FFFFFF"),
			"atelierMachines":        darkSection("#5D3A1A"),
			"atelierValues":          lightSection("#FFFFFF"),
			"atelierTeam":            lightSection("#F9FAFB"),
			"atelierCta":             darkSection("#5D3A1A"),
			"boutiqueHero":           darkSection("#5D3A1A"),
			"boutiqueProduct":        lightSection("#F9FAFB"),
			"boutiqueTabs":           lightSection("#FFFFFF"),
			"boutiqueRelated":        lightSection("#F9FAFB"),
			"boutiqueCart":           lightSection("#FFFFFF"),
			"boutiqueCheckout":       lightSection("#FFFFFF"),
			"boutiqueSuccess":        lightSection("#F0FDF4"),
			"boutiqueConfirmation":   lightSection("#F0FDF4"),
			"contactHero":            darkSection("#3B1E0A"),
			"contactForm":            lightSection("#F5F0EB"),
			"pages":                  map[string]any{
				"home":         map[string]any{"enabled": true, "image": "", "opacity": 20},
				"atelier":      map[string]any{"enabled": true, "image": "", "opacity": 25},
				"services":     map[string]any{"enabled": true, "image": "", "opacity": 20},
				"realisations": map[string]any{"enabled": false, "image": "", "opacity": 30},
				"boutique":     map[string]any{"enabled": true, "image": "", "opacity": 15},
				"contact":      map[string]any{"enabled": true, "image": "", "opacity": 20},
			},
		},
	}
}

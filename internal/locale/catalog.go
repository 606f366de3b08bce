package locale

import (
	"fmt"
	"strings"
)

const (
	LangEnglish = "en"
	LangSpanish = "es"
)

// Key identifies one translatable string. The dialogue engine only ever
// speaks through these keys; no user-facing text lives outside this package.
type Key string

const (
	PromptGreeting         Key = "prompt.greeting"
	PromptPhone            Key = "prompt.phone"
	PromptSMSContact       Key = "prompt.sms_contact"
	PromptCallbackContact  Key = "prompt.callback_contact"
	PromptCallbackTime     Key = "prompt.callback_time"
	PromptScheduleContact  Key = "prompt.schedule_contact"
	PromptScheduleTime     Key = "prompt.schedule_time"
	PromptFastTrack        Key = "prompt.fasttrack"
	PromptValuationFollow  Key = "prompt.valuation_followup"
	PromptMenu             Key = "prompt.menu"
	PromptSceneSafety      Key = "prompt.scene_safety"
	PromptSceneUnsafe      Key = "prompt.scene_unsafe"
	PromptScenePlates      Key = "prompt.scene_plates"
	PromptScenePhoto       Key = "prompt.scene_photo"
	PromptSceneDocs        Key = "prompt.scene_docs"
	PromptSceneUploadFail  Key = "prompt.scene_upload_failed"
	PromptInjuryTiming     Key = "prompt.injury_timing"
	PromptInjured          Key = "prompt.injured"
	PromptPainLevel        Key = "prompt.pain_level"
	PromptHospitalized     Key = "prompt.hospitalized"
	PromptFault            Key = "prompt.fault"
	PromptOtherInsurance   Key = "prompt.other_insurance"
	PromptRepresentation   Key = "prompt.representation"
	PromptSeekingChange    Key = "prompt.seeking_change"
	PromptInjuryType       Key = "prompt.injury_type"
	PromptDescription      Key = "prompt.description"
	PromptEvidenceOffer    Key = "prompt.evidence_offer"
	PromptConnecting       Key = "prompt.connecting"
	PromptPacket           Key = "prompt.packet"
	PromptFallbackOffer    Key = "prompt.fallback_offer"
	PromptBusyFallback     Key = "prompt.busy_fallback"
	PromptDisqualified     Key = "prompt.disqualified"
	PromptDone             Key = "prompt.done"
	PromptLanguageSwitched Key = "prompt.language_switched"

	ErrContact        Key = "error.contact"
	ErrYesNo          Key = "error.yes_no"
	ErrName           Key = "error.name"
	ErrPainLevel      Key = "error.pain_level"
	ErrChoice         Key = "error.choice"
	ErrUploadRequired Key = "error.upload_required"

	OptYes              Key = "option.yes"
	OptNo               Key = "option.no"
	OptFaultOtherDriver Key = "option.fault.other_driver"
	OptFaultShared      Key = "option.fault.shared"
	OptFaultSelf        Key = "option.fault.self"
	OptWhenToday        Key = "option.when.today"
	OptWhenWeek         Key = "option.when.week"
	OptWhenMonth        Key = "option.when.month"
	OptWhenOlder        Key = "option.when.older"
	OptInjuryWhiplash   Key = "option.injury.whiplash"
	OptInjuryFracture   Key = "option.injury.fracture"
	OptInjurySoftTissue Key = "option.injury.soft_tissue"
	OptInjuryHead       Key = "option.injury.head"
	OptInjuryOther      Key = "option.injury.other"
	OptMenuQualify      Key = "option.menu.qualify"
	OptMenuCallback     Key = "option.menu.callback"
	OptMenuSchedule     Key = "option.menu.schedule"
	OptMenuScene        Key = "option.menu.scene"
	OptFallbackLiveChat Key = "option.fallback.live_chat"
	OptFallbackSchedule Key = "option.fallback.schedule"
	OptFallbackDone     Key = "option.fallback.done"
)

type Catalog struct {
	lang     string
	messages map[Key]string
}

// ForLanguage returns the catalog for the given language tag, falling back
// to English for unknown tags.
func ForLanguage(lang string) *Catalog {
	if messages, ok := catalogs[lang]; ok {
		return &Catalog{lang: lang, messages: messages}
	}
	return &Catalog{lang: LangEnglish, messages: catalogs[LangEnglish]}
}

func (c *Catalog) Language() string {
	return c.lang
}

func (c *Catalog) Text(key Key) string {
	if msg, ok := c.messages[key]; ok {
		return msg
	}
	// Missing translations fall back to English rather than a blank bubble.
	if msg, ok := catalogs[LangEnglish][key]; ok {
		return msg
	}
	return string(key)
}

func (c *Catalog) Textf(key Key, args ...interface{}) string {
	return fmt.Sprintf(c.Text(key), args...)
}

// SwitchTarget inspects raw visitor input for a language-switch request and
// returns the requested language tag. The check is a case-insensitive
// containment match so "in english please" and "EN ESPAÑOL" both trigger.
func SwitchTarget(current, rawInput string) (string, bool) {
	input := strings.ToLower(rawInput)
	if current != LangSpanish {
		for _, token := range []string{"español", "espanol", "en espanol", "spanish", "habla español"} {
			if strings.Contains(input, token) {
				return LangSpanish, true
			}
		}
	}
	if current != LangEnglish {
		for _, token := range []string{"english", "inglés", "ingles", "in english"} {
			if strings.Contains(input, token) {
				return LangEnglish, true
			}
		}
	}
	return "", false
}

var catalogs = map[string]map[Key]string{
	LangEnglish: {
		PromptGreeting:         "Hi, I'm here to help with your accident claim. To get started, what's your full name?",
		PromptPhone:            "Thanks, %s. What's the best phone number or email to reach you?",
		PromptSMSContact:       "We can text you updates about your case. What mobile number should we use?",
		PromptCallbackContact:  "One of our case specialists can call you back. What's the best number to reach you?",
		PromptCallbackTime:     "Got it. When is the best time to call?",
		PromptScheduleContact:  "Let's set up a consultation. What's the best phone number or email for you?",
		PromptScheduleTime:     "What day and time work best for your consultation?",
		PromptFastTrack:        "You may have a high-value claim. Let's move quickly - what's your full name?",
		PromptValuationFollow:  "You recently received a case valuation. Would you like to go over it with a senior specialist?",
		PromptMenu:             "How can we help you today?",
		PromptSceneSafety:      "First things first: is everyone safe and out of traffic?",
		PromptSceneUnsafe:      "Please call 911 right away if anyone is hurt. I'll stay here - when you're safe, we can continue.",
		PromptScenePlates:      "While everything is fresh, please take a photo of the other vehicle's license plate and upload it here.",
		PromptScenePhoto:       "Great. Now upload a photo of the accident scene - vehicle positions and any damage.",
		PromptSceneDocs:        "Last one: upload a photo of any documents you exchanged (insurance card, driver's license).",
		PromptSceneUploadFail:  "That upload didn't go through. Please try again.",
		PromptInjuryTiming:     "When did the accident happen?",
		PromptInjured:          "Were you or a passenger injured?",
		PromptPainLevel:        "On a scale of 0 to 10, how bad is the pain right now?",
		PromptHospitalized:     "Did you go to a hospital or see a doctor?",
		PromptFault:            "Who do you believe was at fault?",
		PromptOtherInsurance:   "Does the other driver have insurance?",
		PromptRepresentation:   "Do you currently have a lawyer for this accident?",
		PromptSeekingChange:    "Are you looking to change your representation?",
		PromptInjuryType:       "What kind of injury are you dealing with?",
		PromptDescription:      "In your own words, briefly describe what happened.",
		PromptEvidenceOffer:    "Do you have photos or documents from the accident you could share later?",
		PromptConnecting:       "Thank you. Based on what you've told us, we're connecting you with a senior case specialist right now.",
		PromptPacket:           "Thanks for sharing those details. We've put together an information packet on claims like yours - check your messages shortly.",
		PromptFallbackOffer:    "If you'd like, you can still chat with our team or schedule a free consultation.",
		PromptBusyFallback:     "All of our specialists are currently assisting other clients. Leave your details here and the next available specialist will reach out.",
		PromptDisqualified:     "Since you're already represented, we can't advise on this claim - your attorney is your best resource. We wish you a fast recovery.",
		PromptDone:             "Thank you. We'll be in touch soon - and feel free to come back any time.",
		PromptLanguageSwitched: "No problem, switching to English.",

		ErrContact:        "That doesn't look like a phone number or email. Could you double-check it?",
		ErrYesNo:          "Sorry, I didn't catch that - a simple yes or no works.",
		ErrName:           "Could you give me your full name?",
		ErrPainLevel:      "Please give me a number from 0 to 10.",
		ErrChoice:         "Please pick one of the options below.",
		ErrUploadRequired: "I need the photo to continue - tap the camera button to upload it.",

		OptYes:              "Yes",
		OptNo:               "No",
		OptFaultOtherDriver: "The other driver",
		OptFaultShared:      "We share the blame",
		OptFaultSelf:        "It was my fault",
		OptWhenToday:        "Today",
		OptWhenWeek:         "This week",
		OptWhenMonth:        "This month",
		OptWhenOlder:        "Longer ago",
		OptInjuryWhiplash:   "Whiplash / neck",
		OptInjuryFracture:   "Broken bone",
		OptInjurySoftTissue: "Soft tissue",
		OptInjuryHead:       "Head injury",
		OptInjuryOther:      "Something else",
		OptMenuQualify:      "Start my claim",
		OptMenuCallback:     "Request a callback",
		OptMenuSchedule:     "Schedule a consultation",
		OptMenuScene:        "I'm at the accident scene",
		OptFallbackLiveChat: "Chat with the team",
		OptFallbackSchedule: "Schedule a call",
		OptFallbackDone:     "I'm all set",
	},
	LangSpanish: {
		PromptGreeting:         "Hola, estoy aquí para ayudarle con su reclamo de accidente. Para comenzar, ¿cuál es su nombre completo?",
		PromptPhone:            "Gracias, %s. ¿Cuál es el mejor teléfono o correo electrónico para contactarle?",
		PromptSMSContact:       "Podemos enviarle actualizaciones por mensaje de texto. ¿Qué número de celular debemos usar?",
		PromptCallbackContact:  "Uno de nuestros especialistas puede devolverle la llamada. ¿A qué número le llamamos?",
		PromptCallbackTime:     "Entendido. ¿Cuál es la mejor hora para llamarle?",
		PromptScheduleContact:  "Vamos a programar una consulta. ¿Cuál es su teléfono o correo electrónico?",
		PromptScheduleTime:     "¿Qué día y hora le convienen para la consulta?",
		PromptFastTrack:        "Su caso podría ser de alto valor. Actuemos rápido: ¿cuál es su nombre completo?",
		PromptValuationFollow:  "Hace poco recibió una valoración de su caso. ¿Le gustaría revisarla con un especialista senior?",
		PromptMenu:             "¿Cómo podemos ayudarle hoy?",
		PromptSceneSafety:      "Lo primero: ¿están todos a salvo y fuera del tráfico?",
		PromptSceneUnsafe:      "Por favor llame al 911 de inmediato si alguien está herido. Aquí estaré: cuando esté a salvo, continuamos.",
		PromptScenePlates:      "Mientras todo está reciente, tome una foto de la placa del otro vehículo y súbala aquí.",
		PromptScenePhoto:       "Perfecto. Ahora suba una foto de la escena del accidente: posición de los vehículos y los daños.",
		PromptSceneDocs:        "Por último: suba una foto de los documentos que intercambiaron (tarjeta de seguro, licencia).",
		PromptSceneUploadFail:  "La foto no se subió correctamente. Inténtelo de nuevo, por favor.",
		PromptInjuryTiming:     "¿Cuándo ocurrió el accidente?",
		PromptInjured:          "¿Usted o algún pasajero resultó lesionado?",
		PromptPainLevel:        "En una escala de 0 a 10, ¿qué tan fuerte es el dolor en este momento?",
		PromptHospitalized:     "¿Fue al hospital o vio a un médico?",
		PromptFault:            "¿Quién cree que tuvo la culpa?",
		PromptOtherInsurance:   "¿El otro conductor tiene seguro?",
		PromptRepresentation:   "¿Actualmente tiene un abogado para este accidente?",
		PromptSeekingChange:    "¿Está buscando cambiar de representación?",
		PromptInjuryType:       "¿Qué tipo de lesión tiene?",
		PromptDescription:      "Con sus propias palabras, describa brevemente lo que pasó.",
		PromptEvidenceOffer:    "¿Tiene fotos o documentos del accidente que pueda compartir más adelante?",
		PromptConnecting:       "Gracias. Según lo que nos ha contado, le estamos conectando ahora mismo con un especialista senior.",
		PromptPacket:           "Gracias por compartir esos detalles. Hemos preparado un paquete informativo sobre reclamos como el suyo; revise sus mensajes en breve.",
		PromptFallbackOffer:    "Si lo desea, todavía puede chatear con nuestro equipo o programar una consulta gratuita.",
		PromptBusyFallback:     "Todos nuestros especialistas están atendiendo a otros clientes. Deje sus datos aquí y el próximo especialista disponible le contactará.",
		PromptDisqualified:     "Como ya cuenta con representación, no podemos asesorarle sobre este reclamo; su abogado es su mejor recurso. Le deseamos una pronta recuperación.",
		PromptDone:             "Gracias. Estaremos en contacto pronto; vuelva cuando quiera.",
		PromptLanguageSwitched: "Con gusto, cambiamos a español.",

		ErrContact:        "Eso no parece un número de teléfono ni un correo electrónico. ¿Podría verificarlo?",
		ErrYesNo:          "Disculpe, no le entendí. Con un simple sí o no es suficiente.",
		ErrName:           "¿Me puede dar su nombre completo?",
		ErrPainLevel:      "Por favor indique un número del 0 al 10.",
		ErrChoice:         "Por favor elija una de las opciones de abajo.",
		ErrUploadRequired: "Necesito la foto para continuar; toque el botón de la cámara para subirla.",

		OptYes:              "Sí",
		OptNo:               "No",
		OptFaultOtherDriver: "El otro conductor",
		OptFaultShared:      "Compartimos la culpa",
		OptFaultSelf:        "Fue mi culpa",
		OptWhenToday:        "Hoy",
		OptWhenWeek:         "Esta semana",
		OptWhenMonth:        "Este mes",
		OptWhenOlder:        "Hace más tiempo",
		OptInjuryWhiplash:   "Latigazo cervical / cuello",
		OptInjuryFracture:   "Hueso fracturado",
		OptInjurySoftTissue: "Tejido blando",
		OptInjuryHead:       "Lesión en la cabeza",
		OptInjuryOther:      "Otra cosa",
		OptMenuQualify:      "Iniciar mi reclamo",
		OptMenuCallback:     "Solicitar una llamada",
		OptMenuSchedule:     "Programar una consulta",
		OptMenuScene:        "Estoy en la escena del accidente",
		OptFallbackLiveChat: "Chatear con el equipo",
		OptFallbackSchedule: "Programar una llamada",
		OptFallbackDone:     "Estoy listo",
	},
}

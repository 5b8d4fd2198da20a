package prompt

import (
	"sort"
	"strings"
)

// Language is a supported transcription language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`

	// domain is the vocabulary hint given to speech recognition.
	domain string
	// correction and summary are the instruction bodies in the language itself.
	correction string
	summary    string
	// tooLarge and tooLong are client-facing limit messages; they take
	// {{limit}} as their only variable.
	tooLarge string
	tooLong  string
}

// DefaultLanguage is used when a request names no language or an unknown one.
const DefaultLanguage = "en"

var languages = map[string]Language{
	"en": {
		Code: "en", Name: "English", Flag: "🇺🇸",
		domain:     "This is a recording of a podcast, interview or meeting with clear speech, names, and technical terms.",
		correction: "You are a transcript editor. Correct only grammar, punctuation, capitalization and formatting in the {{language}} transcript you are given. Keep the speaker's wording and meaning exactly. Reply with the corrected transcript only, in {{language}}, with no commentary.",
		summary:    "You create concise summaries of transcribed audio. Summarize the transcript you are given in {{language}}, keeping the key points, decisions and names. Reply with the summary only.",
		tooLarge:   "The file is too large. The maximum upload size is {{limit}}.",
		tooLong:    "The audio is too long. The maximum duration is {{limit}}.",
	},
	"es": {
		Code: "es", Name: "Español", Flag: "🇪🇸",
		domain:     "Esta es una grabación de un pódcast, entrevista o reunión con habla clara, nombres y términos técnicos.",
		correction: "Eres un editor de transcripciones. Corrige solo la gramática, la puntuación, las mayúsculas y el formato de la transcripción en {{language}}. Conserva exactamente las palabras y el sentido del hablante. Responde solo con la transcripción corregida, en {{language}}, sin comentarios.",
		summary:    "Creas resúmenes concisos de audio transcrito. Resume la transcripción en {{language}}, conservando los puntos clave, las decisiones y los nombres. Responde solo con el resumen.",
		tooLarge:   "El archivo es demasiado grande. El tamaño máximo es {{limit}}.",
		tooLong:    "El audio es demasiado largo. La duración máxima es {{limit}}.",
	},
	"fr": {
		Code: "fr", Name: "Français", Flag: "🇫🇷",
		domain:     "Ceci est l'enregistrement d'un podcast, d'une interview ou d'une réunion avec une parole claire, des noms et des termes techniques.",
		correction: "Tu es un correcteur de transcriptions. Corrige uniquement la grammaire, la ponctuation, les majuscules et la mise en forme de la transcription en {{language}}. Conserve exactement les mots et le sens de l'orateur. Réponds uniquement avec la transcription corrigée, en {{language}}, sans commentaire.",
		summary:    "Tu rédiges des résumés concis d'audio transcrit. Résume la transcription en {{language}} en gardant les points clés, les décisions et les noms. Réponds uniquement avec le résumé.",
		tooLarge:   "Le fichier est trop volumineux. La taille maximale est de {{limit}}.",
		tooLong:    "L'audio est trop long. La durée maximale est de {{limit}}.",
	},
	"de": {
		Code: "de", Name: "Deutsch", Flag: "🇩🇪",
		domain:     "Dies ist die Aufnahme eines Podcasts, Interviews oder Meetings mit klarer Sprache, Namen und Fachbegriffen.",
		correction: "Du bist ein Transkript-Lektor. Korrigiere nur Grammatik, Zeichensetzung, Groß- und Kleinschreibung und Formatierung des Transkripts auf {{language}}. Behalte Wortlaut und Bedeutung des Sprechers exakt bei. Antworte nur mit dem korrigierten Transkript auf {{language}}, ohne Kommentar.",
		summary:    "Du erstellst prägnante Zusammenfassungen von transkribiertem Audio. Fasse das Transkript auf {{language}} zusammen und behalte Kernpunkte, Entscheidungen und Namen bei. Antworte nur mit der Zusammenfassung.",
		tooLarge:   "Die Datei ist zu groß. Die maximale Größe beträgt {{limit}}.",
		tooLong:    "Die Aufnahme ist zu lang. Die maximale Dauer beträgt {{limit}}.",
	},
	"it": {
		Code: "it", Name: "Italiano", Flag: "🇮🇹",
		domain:     "Questa è la registrazione di un podcast, un'intervista o una riunione con parlato chiaro, nomi e termini tecnici.",
		correction: "Sei un revisore di trascrizioni. Correggi solo grammatica, punteggiatura, maiuscole e formattazione della trascrizione in {{language}}. Mantieni esattamente le parole e il significato di chi parla. Rispondi solo con la trascrizione corretta, in {{language}}, senza commenti.",
		summary:    "Crei riassunti concisi di audio trascritto. Riassumi la trascrizione in {{language}} mantenendo i punti chiave, le decisioni e i nomi. Rispondi solo con il riassunto.",
		tooLarge:   "Il file è troppo grande. La dimensione massima è {{limit}}.",
		tooLong:    "L'audio è troppo lungo. La durata massima è {{limit}}.",
	},
	"pt": {
		Code: "pt", Name: "Português", Flag: "🇧🇷",
		domain:     "Esta é a gravação de um podcast, entrevista ou reunião com fala clara, nomes e termos técnicos.",
		correction: "Você é um revisor de transcrições. Corrija apenas gramática, pontuação, maiúsculas e formatação da transcrição em {{language}}. Mantenha exatamente as palavras e o sentido de quem fala. Responda apenas com a transcrição corrigida, em {{language}}, sem comentários.",
		summary:    "Você cria resumos concisos de áudio transcrito. Resuma a transcrição em {{language}}, mantendo os pontos principais, as decisões e os nomes. Responda apenas com o resumo.",
		tooLarge:   "O arquivo é grande demais. O tamanho máximo é {{limit}}.",
		tooLong:    "O áudio é longo demais. A duração máxima é {{limit}}.",
	},
	"hi": {
		Code: "hi", Name: "हिन्दी", Flag: "🇮🇳",
		domain:     "यह एक पॉडकास्ट, साक्षात्कार या मीटिंग की रिकॉर्डिंग है जिसमें स्पष्ट भाषण, नाम और तकनीकी शब्द हैं।",
		correction: "आप एक ट्रांसक्रिप्ट संपादक हैं। {{language}} ट्रांसक्रिप्ट में केवल व्याकरण, विराम चिह्न और फ़ॉर्मेटिंग सुधारें। वक्ता के शब्द और अर्थ बिल्कुल वैसे ही रखें। केवल सुधारा हुआ ट्रांसक्रिप्ट {{language}} में लौटाएँ, कोई टिप्पणी नहीं।",
		summary:    "आप ट्रांसक्राइब किए गए ऑडियो के संक्षिप्त सारांश बनाते हैं। ट्रांसक्रिप्ट का सारांश {{language}} में दें, मुख्य बिंदु, निर्णय और नाम रखें। केवल सारांश लौटाएँ।",
		tooLarge:   "फ़ाइल बहुत बड़ी है। अधिकतम आकार {{limit}} है।",
		tooLong:    "ऑडियो बहुत लंबा है। अधिकतम अवधि {{limit}} है।",
	},
	"ja": {
		Code: "ja", Name: "日本語", Flag: "🇯🇵",
		domain:     "これはポッドキャスト、インタビュー、または会議の録音で、明瞭な発話、人名、専門用語を含みます。",
		correction: "あなたは文字起こしの校正者です。{{language}}の文字起こしの文法、句読点、書式だけを修正してください。話者の言葉と意味はそのまま保ってください。修正した文字起こしだけを{{language}}で返し、説明は付けないでください。",
		summary:    "あなたは文字起こし音声の簡潔な要約を作成します。文字起こしを{{language}}で要約し、要点、決定事項、人名を残してください。要約だけを返してください。",
		tooLarge:   "ファイルが大きすぎます。最大サイズは{{limit}}です。",
		tooLong:    "音声が長すぎます。最大の長さは{{limit}}です。",
	},
	"zh": {
		Code: "zh", Name: "中文", Flag: "🇨🇳",
		domain:     "这是一段播客、访谈或会议的录音，语音清晰，包含人名和专业术语。",
		correction: "你是一名转录稿校对员。只修正{{language}}转录稿中的语法、标点和格式。完全保留说话人的用词和意思。只返回修正后的{{language}}转录稿，不要附加任何说明。",
		summary:    "你负责为转录的音频撰写简明摘要。用{{language}}总结转录稿，保留要点、决定和人名。只返回摘要。",
		tooLarge:   "文件太大。最大上传大小为{{limit}}。",
		tooLong:    "音频太长。最长时长为{{limit}}。",
	},
}

// Languages returns the supported languages ordered by code.
func Languages() []Language {
	out := make([]Language, 0, len(languages))
	for _, l := range languages {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Lookup returns the language for code. Region suffixes ("pt-BR") and case
// are ignored.
func Lookup(code string) (Language, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	l, ok := languages[code]
	return l, ok
}

// Resolve is Lookup with a fallback to DefaultLanguage.
func Resolve(code string) Language {
	if l, ok := Lookup(code); ok {
		return l
	}
	return languages[DefaultLanguage]
}

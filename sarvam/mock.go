package sarvam

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
)

var mockQuestions = map[string][]string{
	"en": {
		"What is the capital of France?",
		"Can you explain how photosynthesis works?",
		"Tell me about the solar system",
		"What is the Pythagorean theorem?",
		"Who was Albert Einstein?",
	},
	"hi": {
		"फ्रांस की राजधानी क्या है?",
		"क्या आप बता सकते हैं कि प्रकाश संश्लेषण कैसे काम करता है?",
		"मुझे सौर मंडल के बारे में बताओ",
		"पाइथागोरस प्रमेय क्या है?",
		"अल्बर्ट आइंस्टाइन कौन थे?",
	},
	"ta": {
		"பிரான்சின் தலைநகரம் என்ன?",
		"ஒளிச்சேர்க்கை எவ்வாறு செயல்படுகிறது என்பதை விளக்க முடியுமா?",
		"சூரிய குடும்பத்தைப் பற்றி எனக்குச் சொல்லுங்கள்",
		"பைதாகரஸ் தேற்றம் என்றால் என்ன?",
		"ஆல்பர்ட் ஐன்ஸ்டைன் யார்?",
	},
	"te": {
		"ఫ్రాన్స్ రాజధాని ఏమిటి?",
		"కిరణజన్య సంయోగక్రియ ఎలా పనిచేస్తుందో వివరించగలరా?",
		"సౌర వ్యవస్థ గురించి నాకు చెప్పండి",
		"పైథాగరస్ సిద్ధాంతం అంటే ఏమిటి?",
		"ఆల్బర్ట్ ఐన్‌స్టీన్ ఎవరు?",
	},
}

// mockTranslations are canned answers keyed by target language and an
// English keyword found in the text.
var mockTranslations = map[string][]struct{ keyword, text string }{
	"hi": {
		{"capital", "पेरिस फ्रांस की राजधानी है।"},
		{"photosynthesis", "प्रकाश संश्लेषण वह प्रक्रिया है जिसके द्वारा पौधे सूर्य के प्रकाश का उपयोग करके कार्बन डाइऑक्साइड और पानी से ग्लूकोज और ऑक्सीजन बनाते हैं।"},
		{"solar", "सौर मंडल हमारे सूर्य और उसके चारों ओर परिक्रमा करने वाले सभी खगोलीय पिंडों का समूह है।"},
		{"pythagorean", "पाइथागोरस प्रमेय कहता है कि एक समकोण त्रिभुज में, कर्ण के वर्ग का मान अन्य दो भुजाओं के वर्गों के योग के बराबर होता है।"},
		{"einstein", "अल्बर्ट आइंस्टाइन एक प्रसिद्ध सैद्धांतिक भौतिक विज्ञानी थे जिन्होंने आपेक्षिकता के सिद्धांत का विकास किया।"},
	},
	"ta": {
		{"capital", "பாரிஸ் பிரான்ஸின் தலைநகரம் ஆகும்."},
		{"photosynthesis", "ஒளிச்சேர்க்கை என்பது தாவரங்கள் சூரிய ஒளியைப் பயன்படுத்தி கார்பன் டை ஆக்ஸைடு மற்றும் நீரிலிருந்து குளூக்கோஸ் மற்றும் ஆக்ஸிஜனை உருவாக்கும் செயல்முறையாகும்."},
		{"solar", "சூரிய குடும்பம் என்பது நமது சூரியனைச் சுற்றி வரும் அனைத்து வானியல் பொருட்களின் தொகுப்பாகும்."},
		{"pythagorean", "பைதாகரஸ் தேற்றம் கூறுவது, ஒரு செங்கோண முக்கோணத்தில், கர்ணத்தின் வர்க்கம் மற்ற இரண்டு பக்கங்களின் வர்க்கங்களின் கூட்டுத்தொகைக்குச் சமமாக இருக்கும்."},
		{"einstein", "ஆல்பர்ட் ஐன்ஸ்டைன் ஒரு பிரபல தத்துவ இயற்பியலாளர், சார்பியல் கோட்பாட்டை உருவாக்கியவர்."},
	},
	"te": {
		{"capital", "ఫ్రాన్స్ రాజధాని పారిస్."},
		{"photosynthesis", "కిరణజన్య సంయోగక్రియ అనేది మొక్కలు సూర్యుడి కాంతిని ఉపయోగించి కార్బన్ డై ఆక్సైడ్ మరియు నీటి నుండి గ్లూకోజ్ మరియు ఆక్సిజన్‌ను తయారు చేసే ప్రక్రియ."},
		{"solar", "సౌర వ్యవస్థ అనేది మన సూర్యుడి చుట్టూ తిరిగే అన్ని ఖగోళ వస్తువుల సముదాయం."},
		{"pythagorean", "పైథాగరస్ సిద్ధాంతం ప్రకారం, లంబకోణ త్రిభుజంలో, కర్ణం యొక్క వర్గం మిగిలిన రెండు భుజాల వర్గాల మొత్తానికి సమానం."},
		{"einstein", "ఆల్బర్ట్ ఐన్‌స్టీన్ ఒక ప్రముఖ సైద్ధాంతిక భౌతిక శాస్త్రవేత్త, సాపేక్షతా సిద్ధాంతాన్ని అభివృద్ధి చేశారు."},
	},
}

func mockTranscript(audio []byte, lang string) string {
	pool, ok := mockQuestions[lang]
	if !ok {
		pool = mockQuestions[DefaultLanguage]
	}
	return pickDeterministic(string(audio), pool)
}

func mockTranslate(text, target string) string {
	lower := strings.ToLower(text)
	for _, t := range mockTranslations[target] {
		if strings.Contains(lower, t.keyword) {
			return t.text
		}
	}
	if target == DefaultLanguage {
		return text
	}
	return "[" + target + "] " + text
}

const (
	mockSampleRate = 16000
	mockDuration   = 0.5 // seconds
)

// mockSpeech renders a short mono 16-bit PCM WAV tone whose pitch is
// derived from the text, so equal text yields equal audio.
func mockSpeech(text string) []byte {
	seed := 0
	for _, r := range text {
		seed += int(r)
	}
	freq := 220 + float64(seed%440)

	samples := int(mockSampleRate * mockDuration)
	dataLen := samples * 2

	var buf bytes.Buffer
	buf.Grow(44 + dataLen)
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVEfmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // mono
	binary.Write(&buf, binary.LittleEndian, uint32(mockSampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(mockSampleRate*2))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))

	for i := 0; i < samples; i++ {
		v := math.Sin(2 * math.Pi * freq * float64(i) / mockSampleRate)
		binary.Write(&buf, binary.LittleEndian, int16(v*0.3*math.MaxInt16))
	}
	return buf.Bytes()
}

// Package quran provides the static surah reference table and the verse
// reference algebra: conversions between (surah, verse) pairs, the linear
// global verse index 1..6236, and textual "surah:verse" references, plus
// range validation, expansion, and formatting.
package quran

// RevelationType indicates where a surah was revealed.
type RevelationType string

// Revelation places.
const (
	Meccan  RevelationType = "meccan"
	Medinan RevelationType = "medinan"
)

// Surah is one of the 114 chapters of the Quran. The table below is
// compiled in; it is never fetched or mutated at runtime.
type Surah struct {
	Number         int            `json:"number"`
	Name           string         `json:"name"`
	NameArabic     string         `json:"name_arabic"`
	VerseCount     int            `json:"verse_count"`
	RevelationType RevelationType `json:"revelation_type"`
}

// Counts across the whole Quran.
const (
	// SurahCount is the number of surahs.
	SurahCount = 114
	// TotalVerses is the number of verses across all surahs (Hafs numbering).
	TotalVerses = 6236
)

// Surahs is the full reference table, indexed by Number-1.
var Surahs = [SurahCount]Surah{
	{1, "Al-Fatihah", "الفاتحة", 7, Meccan},
	{2, "Al-Baqarah", "البقرة", 286, Medinan},
	{3, "Ali 'Imran", "آل عمران", 200, Medinan},
	{4, "An-Nisa", "النساء", 176, Medinan},
	{5, "Al-Ma'idah", "المائدة", 120, Medinan},
	{6, "Al-An'am", "الأنعام", 165, Meccan},
	{7, "Al-A'raf", "الأعراف", 206, Meccan},
	{8, "Al-Anfal", "الأنفال", 75, Medinan},
	{9, "At-Tawbah", "التوبة", 129, Medinan},
	{10, "Yunus", "يونس", 109, Meccan},
	{11, "Hud", "هود", 123, Meccan},
	{12, "Yusuf", "يوسف", 111, Meccan},
	{13, "Ar-Ra'd", "الرعد", 43, Medinan},
	{14, "Ibrahim", "إبراهيم", 52, Meccan},
	{15, "Al-Hijr", "الحجر", 99, Meccan},
	{16, "An-Nahl", "النحل", 128, Meccan},
	{17, "Al-Isra", "الإسراء", 111, Meccan},
	{18, "Al-Kahf", "الكهف", 110, Meccan},
	{19, "Maryam", "مريم", 98, Meccan},
	{20, "Taha", "طه", 135, Meccan},
	{21, "Al-Anbya", "الأنبياء", 112, Meccan},
	{22, "Al-Hajj", "الحج", 78, Medinan},
	{23, "Al-Mu'minun", "المؤمنون", 118, Meccan},
	{24, "An-Nur", "النور", 64, Medinan},
	{25, "Al-Furqan", "الفرقان", 77, Meccan},
	{26, "Ash-Shu'ara", "الشعراء", 227, Meccan},
	{27, "An-Naml", "النمل", 93, Meccan},
	{28, "Al-Qasas", "القصص", 88, Meccan},
	{29, "Al-'Ankabut", "العنكبوت", 69, Meccan},
	{30, "Ar-Rum", "الروم", 60, Meccan},
	{31, "Luqman", "لقمان", 34, Meccan},
	{32, "As-Sajdah", "السجدة", 30, Meccan},
	{33, "Al-Ahzab", "الأحزاب", 73, Medinan},
	{34, "Saba", "سبأ", 54, Meccan},
	{35, "Fatir", "فاطر", 45, Meccan},
	{36, "Ya-Sin", "يس", 83, Meccan},
	{37, "As-Saffat", "الصافات", 182, Meccan},
	{38, "Sad", "ص", 88, Meccan},
	{39, "Az-Zumar", "الزمر", 75, Meccan},
	{40, "Ghafir", "غافر", 85, Meccan},
	{41, "Fussilat", "فصلت", 54, Meccan},
	{42, "Ash-Shuraa", "الشورى", 53, Meccan},
	{43, "Az-Zukhruf", "الزخرف", 89, Meccan},
	{44, "Ad-Dukhan", "الدخان", 59, Meccan},
	{45, "Al-Jathiyah", "الجاثية", 37, Meccan},
	{46, "Al-Ahqaf", "الأحقاف", 35, Meccan},
	{47, "Muhammad", "محمد", 38, Medinan},
	{48, "Al-Fath", "الفتح", 29, Medinan},
	{49, "Al-Hujurat", "الحجرات", 18, Medinan},
	{50, "Qaf", "ق", 45, Meccan},
	{51, "Adh-Dhariyat", "الذاريات", 60, Meccan},
	{52, "At-Tur", "الطور", 49, Meccan},
	{53, "An-Najm", "النجم", 62, Meccan},
	{54, "Al-Qamar", "القمر", 55, Meccan},
	{55, "Ar-Rahman", "الرحمن", 78, Medinan},
	{56, "Al-Waqi'ah", "الواقعة", 96, Meccan},
	{57, "Al-Hadid", "الحديد", 29, Medinan},
	{58, "Al-Mujadila", "المجادلة", 22, Medinan},
	{59, "Al-Hashr", "الحشر", 24, Medinan},
	{60, "Al-Mumtahanah", "الممتحنة", 13, Medinan},
	{61, "As-Saf", "الصف", 14, Medinan},
	{62, "Al-Jumu'ah", "الجمعة", 11, Medinan},
	{63, "Al-Munafiqun", "المنافقون", 11, Medinan},
	{64, "At-Taghabun", "التغابن", 18, Medinan},
	{65, "At-Talaq", "الطلاق", 12, Medinan},
	{66, "At-Tahrim", "التحريم", 12, Medinan},
	{67, "Al-Mulk", "الملك", 30, Meccan},
	{68, "Al-Qalam", "القلم", 52, Meccan},
	{69, "Al-Haqqah", "الحاقة", 52, Meccan},
	{70, "Al-Ma'arij", "المعارج", 44, Meccan},
	{71, "Nuh", "نوح", 28, Meccan},
	{72, "Al-Jinn", "الجن", 28, Meccan},
	{73, "Al-Muzzammil", "المزمل", 20, Meccan},
	{74, "Al-Muddaththir", "المدثر", 56, Meccan},
	{75, "Al-Qiyamah", "القيامة", 40, Meccan},
	{76, "Al-Insan", "الإنسان", 31, Medinan},
	{77, "Al-Mursalat", "المرسلات", 50, Meccan},
	{78, "An-Naba", "النبأ", 40, Meccan},
	{79, "An-Nazi'at", "النازعات", 46, Meccan},
	{80, "'Abasa", "عبس", 42, Meccan},
	{81, "At-Takwir", "التكوير", 29, Meccan},
	{82, "Al-Infitar", "الانفطار", 19, Meccan},
	{83, "Al-Mutaffifin", "المطففين", 36, Meccan},
	{84, "Al-Inshiqaq", "الانشقاق", 25, Meccan},
	{85, "Al-Buruj", "البروج", 22, Meccan},
	{86, "At-Tariq", "الطارق", 17, Meccan},
	{87, "Al-A'la", "الأعلى", 19, Meccan},
	{88, "Al-Ghashiyah", "الغاشية", 26, Meccan},
	{89, "Al-Fajr", "الفجر", 30, Meccan},
	{90, "Al-Balad", "البلد", 20, Meccan},
	{91, "Ash-Shams", "الشمس", 15, Meccan},
	{92, "Al-Layl", "الليل", 21, Meccan},
	{93, "Ad-Duhaa", "الضحى", 11, Meccan},
	{94, "Ash-Sharh", "الشرح", 8, Meccan},
	{95, "At-Tin", "التين", 8, Meccan},
	{96, "Al-'Alaq", "العلق", 19, Meccan},
	{97, "Al-Qadr", "القدر", 5, Meccan},
	{98, "Al-Bayyinah", "البينة", 8, Medinan},
	{99, "Az-Zalzalah", "الزلزلة", 8, Medinan},
	{100, "Al-'Adiyat", "العاديات", 11, Meccan},
	{101, "Al-Qari'ah", "القارعة", 11, Meccan},
	{102, "At-Takathur", "التكاثر", 8, Meccan},
	{103, "Al-'Asr", "العصر", 3, Meccan},
	{104, "Al-Humazah", "الهمزة", 9, Meccan},
	{105, "Al-Fil", "الفيل", 5, Meccan},
	{106, "Quraysh", "قريش", 4, Meccan},
	{107, "Al-Ma'un", "الماعون", 7, Meccan},
	{108, "Al-Kawthar", "الكوثر", 3, Meccan},
	{109, "Al-Kafirun", "الكافرون", 6, Meccan},
	{110, "An-Nasr", "النصر", 3, Medinan},
	{111, "Al-Masad", "المسد", 5, Meccan},
	{112, "Al-Ikhlas", "الإخلاص", 4, Meccan},
	{113, "Al-Falaq", "الفلق", 5, Meccan},
	{114, "An-Nas", "الناس", 6, Meccan},
}

// verseOffsets[i] is the number of verses in all surahs before surah i+1,
// i.e. GlobalID(i+1, 1) == verseOffsets[i] + 1.
var verseOffsets = func() [SurahCount]int {
	var offsets [SurahCount]int
	total := 0
	for i, s := range Surahs {
		offsets[i] = total
		total += s.VerseCount
	}
	if total != TotalVerses {
		panic("quran: surah table does not sum to 6236 verses")
	}
	return offsets
}()

// GetSurah returns the surah with the given number (1..114).
// ok is false if the number is out of range.
func GetSurah(number int) (Surah, bool) {
	if number < 1 || number > SurahCount {
		return Surah{}, false
	}
	return Surahs[number-1], true
}

// SurahVerseCount returns the number of verses in the given surah,
// or 0 if the surah number is out of range.
func SurahVerseCount(number int) int {
	s, ok := GetSurah(number)
	if !ok {
		return 0
	}
	return s.VerseCount
}

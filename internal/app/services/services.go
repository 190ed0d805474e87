package services

// Services defined in this package:
// - AuthService: registration, login and WhatsApp verification
// - UserService: user administration and profiles
// - SubjectService: subjects, rosters, materials and closure
// - ExamService: exam definition, submission, correction, rework
// - TranscriptService: final-grade records and manual overrides

package handlers

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"communityfund/internal/middleware"
)

const (
	msgInvalidAmount       = "error.invalid_amount"
	msgInvalidComplaintID  = "error.invalid_complaint_id"
	msgInvalidInput        = "error.invalid_input"
	msgInvalidPayload      = "error.invalid_payload"
	msgNotFound            = "error.not_found"
	msgNoContributions     = "error.no_contributions"
	msgNoUserTotal         = "error.no_user_total"
	msgConflict            = "error.conflict"
	msgDuplicateOperation  = "error.duplicate_operation"
	msgComplaintFunded     = "error.complaint_funded"
	msgStorage             = "error.storage"
	msgComplaintCreated    = "ok.complaint_created"
	msgComplaintUpdated    = "ok.complaint_updated"
	msgComplaintDeleted    = "ok.complaint_deleted"
	msgContributionAdded   = "ok.contribution_added"
	msgContributionReplay  = "ok.contribution_replayed"
	msgContributionPartial = "ok.contribution_partial_credit"
)

var translations = map[string]map[language.Tag]string{
	msgInvalidAmount: {
		language.English: "Amount must be a positive number with at most two decimal places",
		language.Bengali: "পরিমাণ অবশ্যই দুই দশমিক ঘর পর্যন্ত একটি ধনাত্মক সংখ্যা হতে হবে",
	},
	msgInvalidComplaintID: {
		language.English: "Invalid issue ID",
		language.Bengali: "অভিযোগের আইডি সঠিক নয়",
	},
	msgInvalidInput: {
		language.English: "All fields are required",
		language.Bengali: "সব ঘর পূরণ করা আবশ্যক",
	},
	msgInvalidPayload: {
		language.English: "Invalid request body",
		language.Bengali: "অনুরোধের বিষয়বস্তু সঠিক নয়",
	},
	msgNotFound: {
		language.English: "Issue not found",
		language.Bengali: "অভিযোগ পাওয়া যায়নি",
	},
	msgNoContributions: {
		language.English: "No contributions found",
		language.Bengali: "কোনো অবদান পাওয়া যায়নি",
	},
	msgNoUserTotal: {
		language.English: "No contributions recorded for this user",
		language.Bengali: "এই ব্যবহারকারীর কোনো অবদান নেই",
	},
	msgConflict: {
		language.English: "Issue already exists",
		language.Bengali: "অভিযোগটি ইতিমধ্যে আছে",
	},
	msgDuplicateOperation: {
		language.English: "This idempotency key was already used for a different contribution",
		language.Bengali: "এই আইডেমপোটেন্সি কী অন্য একটি অবদানের জন্য ব্যবহৃত হয়েছে",
	},
	msgComplaintFunded: {
		language.English: "Issue is already fully funded",
		language.Bengali: "অভিযোগটির তহবিল ইতিমধ্যে সম্পূর্ণ হয়েছে",
	},
	msgStorage: {
		language.English: "Server error",
		language.Bengali: "সার্ভারে ত্রুটি",
	},
	msgComplaintCreated: {
		language.English: "Issue added successfully",
		language.Bengali: "অভিযোগ সফলভাবে যোগ হয়েছে",
	},
	msgComplaintUpdated: {
		language.English: "Issue updated successfully!",
		language.Bengali: "অভিযোগ সফলভাবে হালনাগাদ হয়েছে!",
	},
	msgComplaintDeleted: {
		language.English: "Issue deleted successfully!",
		language.Bengali: "অভিযোগ সফলভাবে মুছে ফেলা হয়েছে!",
	},
	msgContributionAdded: {
		language.English: "Contribution added successfully!",
		language.Bengali: "অবদান সফলভাবে যোগ হয়েছে!",
	},
	msgContributionReplay: {
		language.English: "Contribution was already recorded",
		language.Bengali: "অবদানটি আগেই সংরক্ষিত হয়েছে",
	},
	msgContributionPartial: {
		language.English: "Contribution recorded; your total will be updated shortly",
		language.Bengali: "অবদান সংরক্ষিত হয়েছে; আপনার মোট পরিমাণ শীঘ্রই হালনাগাদ হবে",
	},
}

var messages = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, byLang := range translations {
		for tag, text := range byLang {
			if err := b.SetString(tag, key, text); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// localize renders key in the locale negotiated for the request.
func localize(r *http.Request, key string) string {
	tag := language.Make(middleware.LocaleFromContext(r.Context()))
	return message.NewPrinter(tag, message.Catalog(messages)).Sprintf(key)
}

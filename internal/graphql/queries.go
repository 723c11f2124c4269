package graphql

// TimesheetDocument fetches the per-case, per-worker hours of a dataset.
// The endpoint takes its dates as DD-MM-YYYY.
const TimesheetDocument = `query Timesheet($slug: String!, $filters: [FilterInput], $dateStart: String, $dateEnd: String) {
  timesheet(slug: $slug, filters: $filters, dateStart: $dateStart, dateEnd: $dateEnd) {
    summary {
      totalHours
      totalConsultingHours
      totalHandsOnHours
      totalSquadHours
      totalInternalHours
      uniqueClients
      uniqueSponsors
      uniqueCases
      uniqueWorkers
      uniqueAccountManagers
    }
    byCase {
      title
      caseDetails {
        sponsor
        client {
          name
          accountManager {
            name
          }
        }
      }
      byWorker {
        worker
        totalConsultingHours
        totalHandsOnHours
        totalSquadHours
        totalInternalHours
      }
    }
  }
}`

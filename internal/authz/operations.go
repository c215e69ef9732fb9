package authz

// Operation names a protected action exposed by the API.
type Operation string

// Resource names an owner lookup registered on the Guard.
type Resource string

const (
	ResourceCourse      Resource = "course"
	ResourceApplication Resource = "application"
	ResourceEnrollment  Resource = "enrollment"
	ResourcePayment     Resource = "payment"
)

// Policy is the requirement of one operation. A non-empty Resource makes the
// operation ownership-scoped.
type Policy struct {
	Requirement Requirement
	Resource    Resource
}

// OwnershipScoped reports whether the policy needs an owner check.
func (p Policy) OwnershipScoped() bool {
	return p.Resource != ""
}

const (
	OpAccountProfileRead   Operation = "account.profile.read"
	OpAccountProfileUpdate Operation = "account.profile.update"
	OpAccountList          Operation = "account.list"
	OpAccountRoleUpdate    Operation = "account.role.update"

	OpCategoryCreate Operation = "category.create"
	OpCategoryUpdate Operation = "category.update"
	OpCategoryDelete Operation = "category.delete"

	OpCourseCreate    Operation = "course.create"
	OpCourseListMine  Operation = "course.list.mine"
	OpCourseReadDraft Operation = "course.read.draft"
	OpCourseUpdate    Operation = "course.update"
	OpCoursePublish   Operation = "course.publish"
	OpCourseArchive   Operation = "course.archive"
	OpCourseDelete    Operation = "course.delete"

	OpApplicationSubmit   Operation = "application.submit"
	OpApplicationListMine Operation = "application.list.mine"
	OpApplicationRead     Operation = "application.read"
	OpApplicationList     Operation = "application.list"
	OpApplicationReview   Operation = "application.review"
	OpApplicationExport   Operation = "application.export"

	OpEnrollmentCreate     Operation = "enrollment.create"
	OpEnrollmentListMine   Operation = "enrollment.list.mine"
	OpEnrollmentRead       Operation = "enrollment.read"
	OpEnrollmentVerify     Operation = "enrollment.verify"
	OpEnrollmentListCourse Operation = "enrollment.list.course"

	OpDashboardInstructor Operation = "dashboard.instructor"
	OpDashboardAdmin      Operation = "dashboard.admin"
)

// DefaultPolicies is the single table of who may do what.
var DefaultPolicies = map[Operation]Policy{
	OpAccountProfileRead:   {Requirement: RequireAuthenticated},
	OpAccountProfileUpdate: {Requirement: RequireAuthenticated},
	OpAccountList:          {Requirement: RequireAdmin},
	OpAccountRoleUpdate:    {Requirement: RequireAdmin},

	OpCategoryCreate: {Requirement: RequireAdmin},
	OpCategoryUpdate: {Requirement: RequireAdmin},
	OpCategoryDelete: {Requirement: RequireAdmin},

	OpCourseCreate:    {Requirement: RequireInstructorOrAbove},
	OpCourseListMine:  {Requirement: RequireInstructorOrAbove},
	OpCourseReadDraft: {Requirement: RequireInstructorOrAbove, Resource: ResourceCourse},
	OpCourseUpdate:    {Requirement: RequireInstructorOrAbove, Resource: ResourceCourse},
	OpCoursePublish:   {Requirement: RequireInstructorOrAbove, Resource: ResourceCourse},
	OpCourseArchive:   {Requirement: RequireInstructorOrAbove, Resource: ResourceCourse},
	OpCourseDelete:    {Requirement: RequireInstructorOrAbove, Resource: ResourceCourse},

	OpApplicationSubmit:   {Requirement: RequireStudent},
	OpApplicationListMine: {Requirement: RequireAuthenticated},
	OpApplicationRead:     {Requirement: RequireAuthenticated, Resource: ResourceApplication},
	OpApplicationList:     {Requirement: RequireAdmin},
	OpApplicationReview:   {Requirement: RequireAdmin},
	OpApplicationExport:   {Requirement: RequireAdmin},

	OpEnrollmentCreate:     {Requirement: RequireAuthenticated},
	OpEnrollmentListMine:   {Requirement: RequireAuthenticated},
	OpEnrollmentRead:       {Requirement: RequireAuthenticated, Resource: ResourceEnrollment},
	OpEnrollmentVerify:     {Requirement: RequireAuthenticated, Resource: ResourcePayment},
	OpEnrollmentListCourse: {Requirement: RequireInstructorOrAbove, Resource: ResourceCourse},

	OpDashboardInstructor: {Requirement: RequireInstructorOrAbove},
	OpDashboardAdmin:      {Requirement: RequireAdmin},
}

// PolicyFor looks op up in DefaultPolicies.
func PolicyFor(op Operation) (Policy, bool) {
	p, ok := DefaultPolicies[op]
	return p, ok
}

package notify

import (
	"fmt"

	"github.com/mr-atuzie/angt-votify-BE/storage"
)

const credentialSubject = "Your voting credentials"

func credentialEmailHTML(voter *storage.Voter) string {
	return fmt.Sprintf(`
    <body style="font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 0;">
      <div style="width: 100%%; max-width: 600px; margin: 0 auto; background-color: #ffffff; border: 1px solid #dddddd; border-radius: 5px; overflow: hidden;">
        <div style="background-color: #FF5D2E; padding: 20px; text-align: center; color: #ffffff;">
          <h1 style="margin: 0;">Welcome!</h1>
        </div>
        <div style="padding: 20px;">
          <p style="text-transform: capitalize;">Hi <strong>%s</strong>,</p>
          <p>You have been registered as a voter. Use the credentials below to log in and cast your vote:</p>
          <p style="font-size: 20px; font-weight: bold; text-align: center; margin: 20px 0;">%s</p>
          <p style="font-size: 20px; font-weight: bold; text-align: center; margin: 20px 0;">%s</p>
          <p>If you were not expecting this email, please ignore it.</p>
        </div>
        <div style="background-color: #f4f4f4; padding: 10px; text-align: center; color: #777777;">
          <p style="margin: 0;">&copy; 2024 Votify. All rights reserved.</p>
        </div>
      </div>
    </body>`, voter.FullName, voter.VoterID, voter.VerificationCode)
}

func credentialSMS(voter *storage.Voter) string {
	return fmt.Sprintf("Hi %s, your voter ID is %s and your verification code is %s.",
		voter.FullName, voter.VoterID, voter.VerificationCode)
}
